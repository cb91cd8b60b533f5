package issues

import "github.com/localaudit/localaudit/internal/model"

// BuildActionPlan partitions detected issues into three buckets:
//
//	doToday   - critical issues, plus high-severity quick wins ("5 minutes")
//	thisMonth - remaining high and medium issues
//	ongoing   - everything else
//
// Every issue lands in exactly one bucket, so the plan is a partition of
// the input. Bucket order follows the severity-sorted input order.
func BuildActionPlan(detected []model.DetectedIssue) *model.ActionPlan {
	plan := &model.ActionPlan{
		DoToday:   []model.ActionItem{},
		ThisMonth: []model.ActionItem{},
		Ongoing:   []model.ActionItem{},
	}
	for _, issue := range detected {
		item := model.ActionItem{
			Action:       issue.Name,
			TimeEstimate: issue.TimeToFix,
			Impact:       issue.ExpectedImpact,
			IssueID:      issue.ID,
		}
		switch {
		case issue.Severity == model.SeverityCritical,
			issue.Severity == model.SeverityHigh && issue.TimeToFix == "5 minutes":
			plan.DoToday = append(plan.DoToday, item)
		case issue.Severity == model.SeverityHigh, issue.Severity == model.SeverityMedium:
			plan.ThisMonth = append(plan.ThisMonth, item)
		default:
			plan.Ongoing = append(plan.Ongoing, item)
		}
	}
	return plan
}
