package issues

import (
	"strings"
	"time"

	"github.com/localaudit/localaudit/internal/model"
)

// Predicate is a tagged trigger condition evaluated against a facts record.
// Kind selects the rule; Threshold, Min, Max, and Days parameterize it.
// Website predicates are conditional on a linked URL so a profile without a
// website raises only the missing-website issue, not every downstream one.
// The mobile and NAP predicates additionally require the site to load: a
// dead site already raises the not-loading issue, and nothing further can
// be measured on it.
type Predicate struct {
	Kind      string  `yaml:"kind"`
	Threshold float64 `yaml:"threshold"`
	Min       int     `yaml:"min"`
	Max       int     `yaml:"max"`
	Days      int     `yaml:"days"`
}

var predicateKinds = map[string]bool{
	"services_missing":              true,
	"services_below":                true,
	"description_missing":           true,
	"description_short":             true,
	"description_missing_city":      true,
	"categories_missing":            true,
	"categories_below":              true,
	"category_mismatch":             true,
	"hours_missing":                 true,
	"hours_sparse":                  true,
	"closed_weekends":               true,
	"attributes_below":              true,
	"reviews_below":                 true,
	"reviews_below_competitor_avg":  true,
	"review_stale":                  true,
	"velocity_below":                true,
	"response_rate_zero":            true,
	"response_rate_low":             true,
	"rating_below":                  true,
	"photos_below":                  true,
	"photos_between":                true,
	"logo_missing":                  true,
	"cover_missing":                 true,
	"owner_photos_missing":          true,
	"posts_never":                   true,
	"post_stale":                    true,
	"website_missing":               true,
	"website_not_https":             true,
	"website_not_loading":           true,
	"website_not_mobile":            true,
	"nap_missing":                   true,
}

func knownPredicate(kind string) bool {
	return predicateKinds[kind]
}

// Eval reports whether the predicate fires for the given facts
func (p Predicate) Eval(f *model.BusinessFacts, now time.Time) bool {
	switch p.Kind {

	case "services_missing":
		return len(f.Services) == 0
	case "services_below":
		return len(f.Services) > 0 && len(f.Services) < int(p.Threshold)

	case "description_missing":
		return f.Description == ""
	case "description_short":
		return f.Description != "" && len(f.Description) < int(p.Threshold)
	case "description_missing_city":
		if f.Description == "" {
			return false
		}
		city := model.CityFromAddress(f.BusinessAddress)
		if city == "" {
			return false
		}
		return !strings.Contains(strings.ToLower(f.Description), strings.ToLower(city))

	case "categories_missing":
		return len(f.SecondaryCategories) == 0
	case "categories_below":
		n := len(f.SecondaryCategories)
		return n > 0 && n < int(p.Threshold)
	case "category_mismatch":
		if f.PrimaryCategory == "" || len(f.Competitors) == 0 {
			return false
		}
		for _, c := range f.Competitors {
			if strings.EqualFold(c.Category, f.PrimaryCategory) {
				return false
			}
		}
		return true

	case "hours_missing":
		return len(f.Hours) == 0
	case "hours_sparse":
		return len(f.Hours) > 0 && len(f.Hours) < int(p.Threshold)
	case "closed_weekends":
		return len(f.Hours) > 0 && !f.HasWeekendHours()

	case "attributes_below":
		return len(f.Attributes) < int(p.Threshold)

	case "reviews_below":
		return f.ReviewCount < int(p.Threshold)
	case "reviews_below_competitor_avg":
		avg := f.CompetitorAvgReviews()
		return avg > 0 && float64(f.ReviewCount) < avg
	case "review_stale":
		return f.RecentReviewDate != nil && daysSince(*f.RecentReviewDate, now) > p.Days
	case "velocity_below":
		return f.MonthlyReviewVelocity < p.Threshold
	case "response_rate_zero":
		return f.ReviewCount > 0 && f.ResponseRate == 0
	case "response_rate_low":
		return f.ResponseRate > 0 && f.ResponseRate < p.Threshold
	case "rating_below":
		return f.AverageRating > 0 && f.AverageRating < p.Threshold

	case "photos_below":
		return f.PhotoCount < int(p.Threshold)
	case "photos_between":
		return f.PhotoCount >= p.Min && f.PhotoCount < p.Max
	case "logo_missing":
		return !f.HasLogo
	case "cover_missing":
		return !f.HasCoverPhoto
	case "owner_photos_missing":
		return f.PhotoCount > 0 && f.OwnerPhotoCount == 0

	case "posts_never":
		return f.LastPostDate == nil
	case "post_stale":
		return f.LastPostDate != nil && daysSince(*f.LastPostDate, now) > p.Days

	case "website_missing":
		return f.WebsiteURL == ""
	case "website_not_https":
		return f.WebsiteURL != "" && !f.WebsiteHTTPS
	case "website_not_loading":
		return f.WebsiteURL != "" && !f.WebsiteLoads
	case "website_not_mobile":
		return f.WebsiteURL != "" && f.WebsiteLoads && !f.WebsiteMobile
	case "nap_missing":
		return f.WebsiteURL != "" && f.WebsiteLoads && !f.WebsiteHasNAP

	default:
		return false
	}
}

func daysSince(t time.Time, now time.Time) int {
	return int(now.Sub(t).Hours() / 24)
}
