package pipeline

import (
	"time"

	"github.com/localaudit/localaudit/internal/model"
)

// SyntheticFacts returns the built-in demonstration dataset, a plumbing
// business with deliberately mixed signals. It is the last-resort fallback
// when no upstream source yields data, and the fixture that scoring and
// issue tests anchor on. Relative dates are derived from the supplied
// clock so recency buckets stay stable under test.
//
// A caller-provided name or city overrides the fixture identity so a
// requested business never comes back under the demo name.
func SyntheticFacts(name, city string, now time.Time) *model.BusinessFacts {
	recentReview := now.AddDate(0, 0, -12)
	lastPost := now.AddDate(0, 0, -25)

	facts := model.NewBusinessFacts()
	facts.BusinessName = "Austin Premier Plumbing"
	facts.BusinessAddress = "4521 Congress Ave, Austin, TX 78745"
	facts.GooglePlaceID = "ChIJLwPMoJm1RIYRx0lq_PAT2cQ"
	facts.PrimaryCategory = "Plumber"
	facts.SecondaryCategories = []string{"Water Heater Installation Service"}
	facts.Description = "Austin Premier Plumbing has been serving the Austin metro area for over 12 years. We specialize in residential and commercial plumbing repairs, water heater installation, drain cleaning, and emergency plumbing services."
	facts.Phone = "(512) 555-0198"
	facts.WebsiteURL = "https://austinpremierplumbing.com"
	facts.Hours = map[string]string{
		"monday":    "7:00 AM - 6:00 PM",
		"tuesday":   "7:00 AM - 6:00 PM",
		"wednesday": "7:00 AM - 6:00 PM",
		"thursday":  "7:00 AM - 6:00 PM",
		"friday":    "7:00 AM - 6:00 PM",
		"saturday":  "8:00 AM - 2:00 PM",
	}
	facts.Attributes = map[string]interface{}{
		"Wheelchair accessible": true,
		"Online estimates":      true,
		"Onsite services":       true,
	}
	facts.Services = []model.Service{
		{Name: "Drain Cleaning", Description: "Professional drain unclogging and cleaning services"},
		{Name: "Water Heater Installation", Description: "Tank and tankless water heater installation"},
		{Name: "Pipe Repair", Description: "Burst and leaking pipe repair"},
		{Name: "Faucet Repair", Description: "Kitchen and bathroom faucet repair and replacement"},
	}

	facts.PhotoCount = 18
	facts.OwnerPhotoCount = 8
	facts.HasLogo = true
	facts.HasCoverPhoto = false

	facts.ReviewCount = 87
	facts.AverageRating = 4.6
	facts.RecentReviewDate = &recentReview
	facts.MonthlyReviewVelocity = 3.2
	facts.ResponseRate = 0.45

	facts.LastPostDate = &lastPost
	facts.PostFrequency = model.PostMonthly

	facts.WebsiteHTTPS = true
	facts.WebsiteLoads = true
	facts.WebsiteMobile = true
	facts.WebsiteHasNAP = false

	facts.Competitors = []model.Competitor{
		{Name: "Radiant Plumbing & Air", Category: "Plumber", ReviewCount: 312, Rating: 4.9, PhotoCount: 85, PostActivity: "weekly"},
		{Name: "Stan's Heating, Air & Plumbing", Category: "Plumber", ReviewCount: 245, Rating: 4.7, PhotoCount: 42, PostActivity: "weekly"},
		{Name: "ABC Home & Commercial Services", Category: "Plumber", ReviewCount: 198, Rating: 4.5, PhotoCount: 55, PostActivity: "monthly"},
	}

	if name != "" {
		facts.BusinessName = name
	}
	if city != "" {
		facts.BusinessAddress = city
	}

	facts.Source = "synthetic"
	return facts
}
