package score

import (
	"strings"
	"time"

	"github.com/localaudit/localaudit/internal/model"
)

// Engine evaluates the scoring catalogue against a facts record. It is a
// pure function of its inputs: no network, no shared mutable state, and the
// same facts with the same clock always produce identical output.
type Engine struct {
	catalog *Catalog
}

// NewEngine creates a scoring engine bound to a loaded catalogue
func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Evaluate runs every check in catalogue order, grouped by section, and
// returns per-check results, section totals, the total score, and the
// letter grade. The explicit clock keeps recency buckets deterministic.
func (e *Engine) Evaluate(facts *model.BusinessFacts, now time.Time) *model.ScoreSummary {
	summary := &model.ScoreSummary{
		SectionScores: make(map[string]int, len(e.catalog.Sections)),
	}

	for _, section := range e.catalog.Sections {
		sectionTotal := 0
		for i := range section.Checks {
			check := &section.Checks[i]

			points := e.evaluateCheck(check.ID, facts, now)
			if points > check.MaxPoints {
				points = check.MaxPoints
			}
			if points < 0 {
				points = 0
			}

			summary.CheckResults = append(summary.CheckResults, model.CheckResult{
				SectionID:    section.ID,
				SectionName:  section.Name,
				CheckID:      check.ID,
				CheckName:    check.Name,
				MaxPoints:    check.MaxPoints,
				Score:        points,
				MatchedLabel: check.LabelFor(points),
				DataCitation: check.DataCitation,
			})
			sectionTotal += points
		}
		summary.SectionScores[section.ID] = sectionTotal
		summary.TotalScore += sectionTotal
	}

	summary.Grade = Grade(summary.TotalScore)
	return summary
}

// evaluateCheck awards raw points for one check. Every formula is a
// monotonic function of the facts fields it reads; missing optional fields
// fall to the lowest tier and an empty competitor list short-circuits the
// ratio checks to zero.
func (e *Engine) evaluateCheck(id string, f *model.BusinessFacts, now time.Time) int {
	switch id {

	// ── profile ──
	case "primary_category":
		if f.PrimaryCategory == "" {
			return 0
		}
		if len(f.Competitors) == 0 {
			return 5
		}
		matches := 0
		for _, c := range f.Competitors {
			if strings.EqualFold(c.Category, f.PrimaryCategory) {
				matches++
			}
		}
		switch {
		case matches >= 2:
			return 8
		case matches >= 1:
			return 5
		default:
			return 2
		}

	case "secondary_categories":
		switch n := len(f.SecondaryCategories); {
		case n >= 3:
			return 4
		case n >= 1:
			return 2
		default:
			return 0
		}

	case "services":
		switch n := len(f.Services); {
		case n >= 10:
			return 6
		case n >= 5:
			return 4
		case n >= 1:
			return 2
		default:
			return 0
		}

	case "description":
		n := len(f.Description)
		switch {
		case n >= 500 && descriptionHasKeywords(f):
			return 4
		case n >= 200:
			return 3
		case n > 0:
			return 1
		default:
			return 0
		}

	case "hours":
		days := len(f.Hours)
		switch {
		case days >= 7 && f.HasWeekendHours():
			return 4
		case days >= 5:
			return 3
		case days > 0:
			return 2
		default:
			return 0
		}

	case "attributes":
		switch n := len(f.Attributes); {
		case n >= 10:
			return 3
		case n >= 5:
			return 2
		default:
			return 0
		}

	case "products":
		// Products are not auditable from public data; absence is treated
		// as not-applicable and scored neutral-full.
		return 3

	// ── reviews ──
	case "review_count_vs_competitors":
		if len(f.Competitors) == 0 {
			return 0
		}
		avg := f.CompetitorAvgReviews()
		count := float64(f.ReviewCount)
		switch {
		case count > avg:
			return 8
		case count >= avg*0.75:
			return 5
		case count >= avg*0.5:
			return 3
		case f.ReviewCount >= 10:
			return 1
		default:
			return 0
		}

	case "average_rating":
		switch {
		case f.AverageRating >= 4.5:
			return 4
		case f.AverageRating >= 4.0:
			return 3
		case f.AverageRating >= 3.5:
			return 2
		default:
			return 0
		}

	case "review_recency":
		switch d := daysSince(f.RecentReviewDate, now); {
		case d <= 7:
			return 6
		case d <= 14:
			return 5
		case d <= 30:
			return 2
		default:
			return 0
		}

	case "review_velocity":
		switch {
		case f.MonthlyReviewVelocity >= 3:
			return 4
		case f.MonthlyReviewVelocity >= 2:
			return 3
		case f.MonthlyReviewVelocity >= 1:
			return 2
		default:
			return 0
		}

	case "response_rate":
		switch {
		case f.ResponseRate >= 0.8:
			return 3
		case f.ResponseRate >= 0.4:
			return 2
		case f.ResponseRate > 0:
			return 1
		default:
			return 0
		}

	// ── visual ──
	case "photo_count":
		switch {
		case f.PhotoCount >= 50:
			return 5
		case f.PhotoCount >= 20:
			return 3
		case f.PhotoCount >= 10:
			return 2
		case f.PhotoCount >= 5:
			return 1
		default:
			return 0
		}

	case "photo_variety":
		switch {
		case f.OwnerPhotoCount >= 10 && f.PhotoCount >= 20:
			return 3
		case f.OwnerPhotoCount >= 5:
			return 2
		case f.OwnerPhotoCount >= 1:
			return 1
		default:
			return 0
		}

	case "logo":
		return boolPoints(f.HasLogo, 2)

	case "cover_photo":
		return boolPoints(f.HasCoverPhoto, 2)

	case "recent_photos":
		return boolPoints(f.PhotoCount > 0 && f.OwnerPhotoCount > 0, 1)

	// ── activity ──
	case "post_recency":
		switch d := daysSince(f.LastPostDate, now); {
		case d <= 7:
			return 5
		case d <= 14:
			return 3
		case d <= 30:
			return 1
		default:
			return 0
		}

	case "post_frequency":
		switch f.PostFrequency {
		case model.PostWeekly:
			return 3
		case model.PostMonthly:
			return 2
		case model.PostRarely:
			return 1
		default:
			return 0
		}

	case "qa_readiness":
		// Q&A coverage cannot be read from public data; assume ready.
		return 2

	// ── website ──
	case "website_linked":
		if f.WebsiteURL == "" {
			return 0
		}
		points := 2
		if f.WebsiteHTTPS {
			points++
		}
		if f.WebsiteMobile {
			points++
		}
		return points

	case "website_https":
		return boolPoints(f.WebsiteHTTPS, 2)

	case "website_loads":
		return boolPoints(f.WebsiteLoads, 2)

	case "website_nap":
		return boolPoints(f.WebsiteHasNAP, 2)

	case "website_mobile":
		return boolPoints(f.WebsiteMobile, 2)

	// ── competitive ──
	case "review_count_vs_top3":
		if len(f.Competitors) == 0 {
			return 0
		}
		top := f.CompetitorMaxReviews()
		switch {
		case f.ReviewCount >= top:
			return 3
		case float64(f.ReviewCount) >= float64(top)*0.5:
			return 2
		default:
			return 1
		}

	case "rating_vs_top3":
		if len(f.Competitors) == 0 {
			return 0
		}
		if f.AverageRating >= f.CompetitorAvgRating() {
			return 2
		}
		return 1

	case "photo_count_vs_top3":
		if len(f.Competitors) == 0 {
			return 0
		}
		avg := f.CompetitorAvgPhotos()
		switch {
		case float64(f.PhotoCount) >= avg:
			return 3
		case float64(f.PhotoCount) >= avg*0.5:
			return 2
		default:
			return 1
		}

	default:
		return 0
	}
}

// Grade maps a total score to a letter grade with inclusive lower bounds
func Grade(total int) string {
	switch {
	case total >= 85:
		return "A"
	case total >= 70:
		return "B"
	case total >= 55:
		return "C"
	case total >= 40:
		return "D"
	default:
		return "F"
	}
}

// daysSince returns whole days between t and now, or a sentinel large value
// when t is unset so recency checks land in the lowest bucket.
func daysSince(t *time.Time, now time.Time) int {
	if t == nil {
		return 999
	}
	return int(now.Sub(*t).Hours() / 24)
}

func boolPoints(ok bool, points int) int {
	if ok {
		return points
	}
	return 0
}

// descriptionHasKeywords reports whether the description mentions the
// primary category or the city from the business address.
func descriptionHasKeywords(f *model.BusinessFacts) bool {
	desc := strings.ToLower(f.Description)
	if f.PrimaryCategory != "" && strings.Contains(desc, strings.ToLower(f.PrimaryCategory)) {
		return true
	}
	city := model.CityFromAddress(f.BusinessAddress)
	return city != "" && strings.Contains(desc, strings.ToLower(city))
}
