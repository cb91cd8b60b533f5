package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/localaudit/localaudit/internal/model"
)

// Renderer writes audit results as JSON, Markdown, and a terminal summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full result as indented JSON. An empty path or
// "-" writes to stdout.
func (r *Renderer) RenderJSON(result *model.AuditResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(result *model.AuditResult, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Profile Audit: %s\n\n", result.BusinessName)
	if result.BusinessAddress != "" {
		fmt.Fprintf(&b, "%s\n\n", result.BusinessAddress)
	}
	fmt.Fprintf(&b, "**Score: %d/100 (%s)** · %s\n\n",
		result.TotalScore, result.Grade, model.GradeLabel(result.Grade))
	fmt.Fprintf(&b, "Data source: %s · Audited: %s\n\n",
		result.DataSource, result.CreatedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Section Scores\n\n")
	b.WriteString("| Section | Score |\n|---|---|\n")
	for _, section := range sectionOrder(result.CheckResults) {
		fmt.Fprintf(&b, "| %s | %d/%d |\n",
			section.name, result.SectionScores[section.id], section.max)
	}
	b.WriteString("\n")

	if len(result.Issues) > 0 {
		fmt.Fprintf(&b, "## Issues (%d)\n\n", len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Fprintf(&b, "### [%s] %s\n\n", strings.ToUpper(string(issue.Severity)), issue.Name)
			fmt.Fprintf(&b, "%s\n\n", issue.Description)
			fmt.Fprintf(&b, "%s\n\n", issue.WhyItMatters)
			for _, step := range issue.HowToFix {
				fmt.Fprintf(&b, "- %s\n", step)
			}
			fmt.Fprintf(&b, "\nTime to fix: %s · Impact: %s · Results in: %s\n\n",
				issue.TimeToFix, issue.ExpectedImpact, issue.TimeToResults)
		}
	}

	b.WriteString("## Action Plan\n\n")
	renderBucket(&b, "Do Today", result.ActionPlan.DoToday)
	renderBucket(&b, "This Month", result.ActionPlan.ThisMonth)
	renderBucket(&b, "Ongoing", result.ActionPlan.Ongoing)

	b.WriteString("## Check Details\n\n")
	b.WriteString("| Check | Score | Finding |\n|---|---|---|\n")
	for _, check := range result.CheckResults {
		fmt.Fprintf(&b, "| %s | %d/%d | %s |\n",
			check.CheckName, check.Score, check.MaxPoints, check.MatchedLabel)
	}
	b.WriteString("\n")

	if result.LLM != nil {
		b.WriteString("## Summary\n\n")
		fmt.Fprintf(&b, "%s\n\n", result.LLM.Summary)
		fmt.Fprintf(&b, "_Generated by %s/%s, does not affect the score._\n\n",
			result.LLM.Provider, result.LLM.Model)
	}

	if r.includeFooter {
		b.WriteString("---\n\nGenerated by localaudit. Scores are deterministic: the same profile data always produces the same result.\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// RenderSummary prints a short terminal summary
func (r *Renderer) RenderSummary(result *model.AuditResult) {
	fmt.Printf("\n%s: %d/100 (%s)\n", result.BusinessName, result.TotalScore, result.Grade)
	fmt.Printf("%s\n\n", model.GradeLabel(result.Grade))

	for _, section := range sectionOrder(result.CheckResults) {
		fmt.Printf("  %-22s %3d/%d\n", section.name, result.SectionScores[section.id], section.max)
	}

	counts := map[model.Severity]int{}
	for _, issue := range result.Issues {
		counts[issue.Severity]++
	}
	fmt.Printf("\nIssues: %d critical, %d high, %d medium, %d low\n",
		counts[model.SeverityCritical], counts[model.SeverityHigh],
		counts[model.SeverityMedium], counts[model.SeverityLow])
	fmt.Printf("Next step today: %s\n", firstAction(result.ActionPlan))
	fmt.Printf("Data source: %s\n", result.DataSource)
}

type sectionInfo struct {
	id   string
	name string
	max  int
}

// sectionOrder recovers section display order and ceilings from the check
// results, which are already in catalogue order.
func sectionOrder(checks []model.CheckResult) []sectionInfo {
	var order []sectionInfo
	index := map[string]int{}
	for _, check := range checks {
		i, seen := index[check.SectionID]
		if !seen {
			index[check.SectionID] = len(order)
			order = append(order, sectionInfo{id: check.SectionID, name: check.SectionName})
			i = len(order) - 1
		}
		order[i].max += check.MaxPoints
	}
	return order
}

func renderBucket(b *strings.Builder, title string, items []model.ActionItem) {
	fmt.Fprintf(b, "### %s\n\n", title)
	if len(items) == 0 {
		b.WriteString("Nothing here.\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s (%s, impact: %s)\n", item.Action, item.TimeEstimate, item.Impact)
	}
	b.WriteString("\n")
}

func firstAction(plan model.ActionPlan) string {
	if len(plan.DoToday) > 0 {
		return plan.DoToday[0].Action
	}
	if len(plan.ThisMonth) > 0 {
		return plan.ThisMonth[0].Action
	}
	if len(plan.Ongoing) > 0 {
		return plan.Ongoing[0].Action
	}
	return "none, profile looks healthy"
}
