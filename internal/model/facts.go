package model

import (
	"strings"
	"time"
)

// PostFrequency is the qualitative posting cadence of a profile
type PostFrequency string

const (
	PostWeekly  PostFrequency = "weekly"
	PostMonthly PostFrequency = "monthly"
	PostRarely  PostFrequency = "rarely"
	PostNever   PostFrequency = "never"
	PostUnknown PostFrequency = "unknown"
)

// Service is a single service offered by the business
type Service struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Competitor is a nearby business in the same category.
// Owned by BusinessFacts; it has no independent lifecycle.
type Competitor struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	ReviewCount  int     `json:"reviewCount"`
	Rating       float64 `json:"rating"`
	PhotoCount   int     `json:"photoCount"`
	PostActivity string  `json:"postActivity"`
}

// BusinessFacts is the canonical normalized record every source adapter maps
// into. Every numeric field defaults to a defined neutral value (zero, nil
// pointer, or empty collection) so the scoring and issue engines never have
// to branch on missing keys.
//
// Fields tagged `json:"-"` are provenance-only and must not cross the engine
// boundary.
type BusinessFacts struct {
	BusinessName        string   `json:"businessName"`
	BusinessAddress     string   `json:"businessAddress"`
	GooglePlaceID       string   `json:"googlePlaceId"`
	PrimaryCategory     string   `json:"primaryCategory"`
	SecondaryCategories []string `json:"secondaryCategories"`
	Description         string   `json:"description"`
	Phone               string   `json:"phone"`
	WebsiteURL          string   `json:"websiteUrl"`

	// Hours maps lowercase weekday name to an interval string such as
	// "7:00 AM - 6:00 PM".
	Hours map[string]string `json:"hours"`

	// Attributes maps attribute name to a boolean or free-form value.
	Attributes map[string]interface{} `json:"attributes"`

	Services []Service `json:"services"`

	PhotoCount      int  `json:"photoCount"`
	OwnerPhotoCount int  `json:"ownerPhotoCount"`
	HasLogo         bool `json:"hasLogo"`
	HasCoverPhoto   bool `json:"hasCoverPhoto"`

	ReviewCount           int        `json:"reviewCount"`
	AverageRating         float64    `json:"averageRating"`
	RecentReviewDate      *time.Time `json:"recentReviewDate"`
	MonthlyReviewVelocity float64    `json:"monthlyReviewVelocity"`
	ResponseRate          float64    `json:"responseRate"` // owner responses, 0..1

	LastPostDate  *time.Time    `json:"lastPostDate"`
	PostFrequency PostFrequency `json:"postFrequency"`

	WebsiteHTTPS        bool `json:"websiteHttps"`
	WebsiteLoads        bool `json:"websiteLoads"`
	WebsiteMobile       bool `json:"websiteMobile"`
	WebsiteHasNAP       bool `json:"websiteHasNap"`
	WebsiteMobileScore  *int `json:"websiteMobileScore,omitempty"`
	WebsiteDesktopScore *int `json:"websiteDesktopScore,omitempty"`
	WebsiteLoadSpeedMS  *int `json:"websiteLoadSpeed,omitempty"` // first contentful paint

	Competitors []Competitor `json:"competitors"`

	// Provenance metadata, stripped at the engine boundary
	Source    string `json:"-"`
	SourceCID string `json:"-"`
}

// NewBusinessFacts returns a facts record with all collections initialized
// so downstream consumers never have to nil-check them.
func NewBusinessFacts() *BusinessFacts {
	return &BusinessFacts{
		SecondaryCategories: []string{},
		Hours:               map[string]string{},
		Attributes:          map[string]interface{}{},
		Services:            []Service{},
		PostFrequency:       PostUnknown,
		Competitors:         []Competitor{},
	}
}

// HasWeekendHours reports whether the business lists Saturday or Sunday
// hours. Weekday keys are matched case-insensitively by convention of
// storing them lowercased; the capitalized variants are accepted for
// records merged from raw provider payloads.
func (f *BusinessFacts) HasWeekendHours() bool {
	for _, day := range []string{"saturday", "sunday", "Saturday", "Sunday"} {
		if _, ok := f.Hours[day]; ok {
			return true
		}
	}
	return false
}

// CompetitorAvgReviews returns the mean competitor review count, or 0 when
// there are no competitors.
func (f *BusinessFacts) CompetitorAvgReviews() float64 {
	if len(f.Competitors) == 0 {
		return 0
	}
	sum := 0
	for _, c := range f.Competitors {
		sum += c.ReviewCount
	}
	return float64(sum) / float64(len(f.Competitors))
}

// CompetitorAvgRating returns the mean competitor rating, or 0 when there
// are no competitors.
func (f *BusinessFacts) CompetitorAvgRating() float64 {
	if len(f.Competitors) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range f.Competitors {
		sum += c.Rating
	}
	return sum / float64(len(f.Competitors))
}

// CompetitorAvgPhotos returns the mean competitor photo count, or 0 when
// there are no competitors.
func (f *BusinessFacts) CompetitorAvgPhotos() float64 {
	if len(f.Competitors) == 0 {
		return 0
	}
	sum := 0
	for _, c := range f.Competitors {
		sum += c.PhotoCount
	}
	return float64(sum) / float64(len(f.Competitors))
}

// CompetitorMaxReviews returns the highest competitor review count, or 0
// when there are no competitors.
func (f *BusinessFacts) CompetitorMaxReviews() int {
	max := 0
	for _, c := range f.Competitors {
		if c.ReviewCount > max {
			max = c.ReviewCount
		}
	}
	return max
}

// CityFromAddress extracts the city from a free-text address such as
// "4521 Congress Ave, Austin, TX 78745". The city is the second
// comma-separated segment with digit runs stripped; an address with fewer
// than two segments is used as-is.
func CityFromAddress(address string) string {
	if address == "" {
		return ""
	}
	parts := strings.Split(address, ",")
	segment := parts[0]
	if len(parts) >= 2 {
		segment = parts[1]
	}
	var b strings.Builder
	for _, r := range segment {
		if r < '0' || r > '9' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
