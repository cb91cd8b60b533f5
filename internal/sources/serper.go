package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/localaudit/localaudit/internal/model"
)

// SerperClient is the baseline profile source. It talks to the serper.dev
// Maps endpoint, which returns shallow place data: name, address, category,
// rating, and review count are reliable, while photo and activity fields
// have to be estimated.
type SerperClient struct {
	transport *Transport
	apiKey    string
	baseURL   string
	logger    *zap.Logger
}

// NewSerperClient creates a serper.dev adapter
func NewSerperClient(cfg model.SourcesConfig, transport *Transport, logger *zap.Logger) *SerperClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SerperClient{
		transport: transport,
		apiKey:    cfg.SerperAPIKey,
		baseURL:   strings.TrimRight(cfg.SerperBaseURL, "/"),
		logger:    logger,
	}
}

// Configured reports whether an API key is present
func (c *SerperClient) Configured() bool {
	return c.apiKey != ""
}

// Match is one result of a business search
type Match struct {
	PlaceID     string  `json:"placeId"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	Phone       string  `json:"phone"`
	Website     string  `json:"website"`
}

// serperPlace is the wire shape of one Maps result. Hours may arrive as an
// object keyed by weekday or as an array of day entries, so both raw fields
// stay deferred until parse time.
type serperPlace struct {
	PlaceID        string                 `json:"placeId"`
	CID            string                 `json:"cid"`
	Title          string                 `json:"title"`
	Address        string                 `json:"address"`
	Type           string                 `json:"type"`
	Category       string                 `json:"category"`
	Types          []string               `json:"types"`
	Categories     []string               `json:"categories"`
	Description    string                 `json:"description"`
	Rating         float64                `json:"rating"`
	RatingCount    int                    `json:"ratingCount"`
	PhoneNumber    string                 `json:"phoneNumber"`
	Website        string                 `json:"website"`
	ThumbnailURL   string                 `json:"thumbnailUrl"`
	OperatingHours json.RawMessage        `json:"operatingHours"`
	Hours          json.RawMessage        `json:"hours"`
	ServiceOptions map[string]interface{} `json:"serviceOptions"`
	Accessibility  json.RawMessage        `json:"accessibility"`
}

type serperMapsResponse struct {
	Places []serperPlace `json:"places"`
}

// Search looks up businesses by name and optional city, returning up to
// five candidate matches.
func (c *SerperClient) Search(ctx context.Context, name, city string) ([]Match, error) {
	data, err := c.maps(ctx, mapsQuery(name, city), 5)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(data.Places))
	for _, p := range data.Places {
		matches = append(matches, Match{
			PlaceID:     firstNonEmpty(p.PlaceID, p.CID),
			Name:        p.Title,
			Address:     p.Address,
			Category:    firstNonEmpty(p.Type, p.Category),
			Rating:      p.Rating,
			ReviewCount: p.RatingCount,
			Phone:       p.PhoneNumber,
			Website:     p.Website,
		})
	}
	return matches, nil
}

// BusinessDetails fetches the top Maps match and maps it into a facts
// record. Fields the Maps endpoint cannot provide get estimated or neutral
// values; the deep-data and website stages refine them later.
func (c *SerperClient) BusinessDetails(ctx context.Context, name, city, placeID string, now time.Time) (*model.BusinessFacts, error) {
	query := mapsQuery(name, city)
	data, err := c.maps(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(data.Places) == 0 {
		return nil, fmt.Errorf("no business found for %q", query)
	}
	place := data.Places[0]

	facts := model.NewBusinessFacts()
	facts.BusinessName = firstNonEmpty(place.Title, name)
	facts.BusinessAddress = place.Address
	facts.GooglePlaceID = firstNonEmpty(placeID, place.PlaceID, place.CID)
	facts.PrimaryCategory = firstNonEmpty(place.Type, place.Category)
	facts.SecondaryCategories = secondaryCategories(place.Types, place.Categories)
	facts.Description = place.Description
	facts.Phone = place.PhoneNumber
	facts.WebsiteURL = place.Website
	facts.Hours = parseSerperHours(firstRaw(place.OperatingHours, place.Hours))
	facts.Attributes = serperAttributes(place)

	// Maps gives no photo counts, only a thumbnail. A thumbnail implies at
	// least a minimally stocked profile.
	if place.ThumbnailURL != "" {
		facts.PhotoCount = 10
		facts.OwnerPhotoCount = 5
		facts.HasLogo = true
		facts.HasCoverPhoto = true
	}

	facts.ReviewCount = place.RatingCount
	facts.AverageRating = place.Rating
	facts.RecentReviewDate = estimateRecentReviewDate(place.RatingCount, now)
	facts.MonthlyReviewVelocity = estimateReviewVelocity(place.RatingCount)
	facts.ResponseRate = 0.5 // not observable from Maps data

	facts.WebsiteHTTPS = strings.HasPrefix(place.Website, "https")
	facts.WebsiteLoads = place.Website != ""
	facts.WebsiteMobile = true // assumed until the website stage measures it

	facts.Source = "serper"
	facts.SourceCID = place.CID
	return facts, nil
}

// Competitors searches "<category> in <city>" and returns up to three
// places, excluding the audited business by case-insensitive substring
// match in either direction.
func (c *SerperClient) Competitors(ctx context.Context, category, city, excludeName string) ([]model.Competitor, error) {
	data, err := c.maps(ctx, fmt.Sprintf("%s in %s", category, city), 10)
	if err != nil {
		return nil, err
	}

	exclude := strings.ToLower(excludeName)
	competitors := make([]model.Competitor, 0, 3)
	for _, p := range data.Places {
		name := strings.ToLower(p.Title)
		if exclude != "" && (strings.Contains(name, exclude) || strings.Contains(exclude, name)) {
			continue
		}
		photoCount := 0
		if p.ThumbnailURL != "" {
			photoCount = 20
		}
		competitors = append(competitors, model.Competitor{
			Name:         p.Title,
			Category:     firstNonEmpty(p.Type, p.Category, category),
			ReviewCount:  p.RatingCount,
			Rating:       p.Rating,
			PhotoCount:   photoCount,
			PostActivity: "unknown",
		})
		if len(competitors) == 3 {
			break
		}
	}
	return competitors, nil
}

func (c *SerperClient) maps(ctx context.Context, query string, num int) (*serperMapsResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("serper API key is not configured")
	}

	body, err := json.Marshal(map[string]interface{}{"q": query, "num": num})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	c.logger.Debug("serper maps request", zap.String("query", query), zap.Int("num", num))
	respBody, err := c.transport.do(ctx, request{
		method: "POST",
		url:    c.baseURL + "/maps",
		body:   body,
		headers: map[string]string{
			"X-API-KEY":    c.apiKey,
			"Content-Type": "application/json",
		},
		cacheable: true,
	})
	if err != nil {
		return nil, fmt.Errorf("serper maps: %w", err)
	}

	var data serperMapsResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("parse serper response: %w", err)
	}
	return &data, nil
}

// parseSerperHours accepts the two hour shapes the Maps endpoint emits:
// an object keyed by weekday, or an array of {day, hours} entries.
func parseSerperHours(raw json.RawMessage) map[string]string {
	hours := map[string]string{}
	if len(raw) == 0 {
		return hours
	}

	var asObject map[string]string
	if err := json.Unmarshal(raw, &asObject); err == nil {
		for day, interval := range asObject {
			hours[strings.ToLower(day)] = interval
		}
		return hours
	}

	var asArray []struct {
		Day   string `json:"day"`
		Hours string `json:"hours"`
		Time  string `json:"time"`
	}
	if err := json.Unmarshal(raw, &asArray); err == nil {
		for _, entry := range asArray {
			day := strings.ToLower(entry.Day)
			if !validWeekday(day) {
				continue
			}
			interval := firstNonEmpty(entry.Hours, entry.Time, "Open")
			hours[day] = interval
		}
	}
	return hours
}

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

func validWeekday(day string) bool {
	return weekdays[day]
}

// secondaryCategories filters generic place types out of the raw type list
// and keeps at most five.
func secondaryCategories(types, categories []string) []string {
	raw := types
	if len(raw) == 0 {
		raw = categories
	}
	generic := map[string]bool{
		"point_of_interest": true, "establishment": true,
		"store": true, "food": true, "health": true,
	}
	out := []string{}
	for _, t := range raw {
		if t == "" || generic[strings.ToLower(t)] {
			continue
		}
		out = append(out, t)
		if len(out) == 5 {
			break
		}
	}
	return out
}

func serperAttributes(place serperPlace) map[string]interface{} {
	attrs := map[string]interface{}{}
	for key, val := range place.ServiceOptions {
		attrs[key] = val
	}
	if len(place.Accessibility) > 0 && string(place.Accessibility) != "null" {
		attrs["Wheelchair accessible"] = true
	}
	return attrs
}

// estimateRecentReviewDate infers a plausible last-review date from volume:
// busier profiles collect reviews more often.
func estimateRecentReviewDate(reviewCount int, now time.Time) *time.Time {
	if reviewCount == 0 {
		return nil
	}
	var daysAgo int
	switch {
	case reviewCount >= 100:
		daysAgo = 3
	case reviewCount >= 50:
		daysAgo = 7
	case reviewCount >= 20:
		daysAgo = 14
	default:
		daysAgo = 30
	}
	t := now.AddDate(0, 0, -daysAgo)
	return &t
}

// estimateReviewVelocity assumes roughly three years of listing history
func estimateReviewVelocity(reviewCount int) float64 {
	if reviewCount == 0 {
		return 0
	}
	return float64(int(float64(reviewCount)/36*10+0.5)) / 10
}

func mapsQuery(name, city string) string {
	if city == "" {
		return name
	}
	return fmt.Sprintf("%s in %s", name, city)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstRaw(raws ...json.RawMessage) json.RawMessage {
	for _, r := range raws {
		if len(r) > 0 {
			return r
		}
	}
	return nil
}
