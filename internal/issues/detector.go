package issues

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/localaudit/localaudit/internal/model"
)

// Detector evaluates the issue library against a facts record. Like the
// scoring engine it is a pure function of its inputs.
type Detector struct {
	library *Library
}

// NewDetector creates a detector bound to a loaded issue library
func NewDetector(library *Library) *Detector {
	return &Detector{library: library}
}

// Detect returns every issue whose trigger fires, sorted critical first.
// The sort is stable so issues of equal severity keep library order.
func (d *Detector) Detect(facts *model.BusinessFacts, now time.Time) []model.DetectedIssue {
	detected := make([]model.DetectedIssue, 0, 8)
	for i := range d.library.Issues {
		def := &d.library.Issues[i]
		if !def.Trigger.Eval(facts, now) {
			continue
		}
		detected = append(detected, model.DetectedIssue{
			ID:             def.ID,
			Severity:       def.Severity,
			Section:        def.Section,
			Name:           def.Name,
			Description:    fillPlaceholders(def.Description, facts, now),
			WhyItMatters:   def.WhyItMatters,
			HowToFix:       append([]string(nil), def.HowToFix...),
			TimeToFix:      def.TimeToFix,
			ExpectedImpact: def.ExpectedImpact,
			TimeToResults:  def.TimeToResults,
		})
	}
	sort.SliceStable(detected, func(i, j int) bool {
		return detected[i].Severity.Rank() < detected[j].Severity.Rank()
	})
	return detected
}

// fillPlaceholders substitutes {field} markers in issue descriptions with
// values from the audited facts. Unknown markers are left untouched.
func fillPlaceholders(text string, f *model.BusinessFacts, now time.Time) string {
	if !strings.Contains(text, "{") {
		return text
	}

	maxReviews := f.CompetitorMaxReviews()
	gap := maxReviews - f.ReviewCount
	if gap < 0 {
		gap = 0
	}

	pairs := []string{
		"{services_count}", fmt.Sprintf("%d", len(f.Services)),
		"{secondary_count}", fmt.Sprintf("%d", len(f.SecondaryCategories)),
		"{description_length}", fmt.Sprintf("%d", len(f.Description)),
		"{primary_category}", f.PrimaryCategory,
		"{city}", model.CityFromAddress(f.BusinessAddress),
		"{hours_days}", fmt.Sprintf("%d", len(f.Hours)),
		"{attributes_count}", fmt.Sprintf("%d", len(f.Attributes)),
		"{review_count}", fmt.Sprintf("%d", f.ReviewCount),
		"{rating}", strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", f.AverageRating), "0"), "."),
		"{velocity}", strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", f.MonthlyReviewVelocity), "0"), "."),
		"{response_rate_pct}", fmt.Sprintf("%d", int(f.ResponseRate*100)),
		"{photo_count}", fmt.Sprintf("%d", f.PhotoCount),
		"{competitor_max_reviews}", fmt.Sprintf("%d", maxReviews),
		"{review_gap}", fmt.Sprintf("%d", gap),
	}
	if f.RecentReviewDate != nil {
		pairs = append(pairs, "{days_since_review}", fmt.Sprintf("%d", daysSince(*f.RecentReviewDate, now)))
	}
	if f.LastPostDate != nil {
		pairs = append(pairs, "{days_since_post}", fmt.Sprintf("%d", daysSince(*f.LastPostDate, now)))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
