package model

import "time"

// Section identifiers for the six fixed scoring categories
const (
	SectionProfile     = "profile"
	SectionReviews     = "reviews"
	SectionVisual      = "visual"
	SectionActivity    = "activity"
	SectionWebsite     = "website"
	SectionCompetitive = "competitive"
)

// Severity classifies how urgent a detected issue is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank returns the sort position of the severity: critical sorts first.
// Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// CheckResult is the outcome of a single scoring check. Produced fresh per
// evaluation and never mutated afterwards.
type CheckResult struct {
	SectionID    string `json:"sectionId"`
	SectionName  string `json:"sectionName"`
	CheckID      string `json:"checkId"`
	CheckName    string `json:"checkName"`
	MaxPoints    int    `json:"maxPoints"`
	Score        int    `json:"score"`
	MatchedLabel string `json:"matchedLabel"`
	DataCitation string `json:"dataCitation"`
}

// DetectedIssue is an issue-library entry that matched the audited business
type DetectedIssue struct {
	ID             string   `json:"id"`
	Severity       Severity `json:"severity"`
	Section        string   `json:"section"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	WhyItMatters   string   `json:"whyItMatters"`
	HowToFix       []string `json:"howToFix"`
	TimeToFix      string   `json:"timeToFix"`
	ExpectedImpact string   `json:"expectedImpact"`
	TimeToResults  string   `json:"timeToResults"`
}

// ActionItem is one entry of the prioritized remediation plan
type ActionItem struct {
	Action       string `json:"action"`
	TimeEstimate string `json:"timeEstimate"`
	Impact       string `json:"impact"`
	IssueID      string `json:"issueId"`
}

// ActionPlan buckets detected issues into time horizons. Every detected
// issue lands in exactly one bucket.
type ActionPlan struct {
	DoToday   []ActionItem `json:"doToday"`
	ThisMonth []ActionItem `json:"thisMonth"`
	Ongoing   []ActionItem `json:"ongoing"`
}

// ScoreSummary is the scoring engine's output for one facts record
type ScoreSummary struct {
	TotalScore    int            `json:"totalScore"`
	Grade         string         `json:"grade"`
	SectionScores map[string]int `json:"sectionScores"`
	CheckResults  []CheckResult  `json:"checkResults"`
}

// LLMSummary is an optional natural-language reading of a finished audit.
// It is generated after scoring and never feeds back into it.
type LLMSummary struct {
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// AuditResult is the complete, immutable outcome of one audit invocation.
// BusinessFacts is embedded so its fields serialize flattened alongside the
// derived scoring data.
type AuditResult struct {
	BusinessFacts

	TotalScore    int             `json:"totalScore"`
	Grade         string          `json:"grade"`
	SectionScores map[string]int  `json:"sectionScores"`
	CheckResults  []CheckResult   `json:"checkResults"`
	Issues        []DetectedIssue `json:"issues"`
	ActionPlan    ActionPlan      `json:"actionPlan"`

	// DataSource records which upstream sources contributed, e.g.
	// "serper+outscraper+pagespeed" or "synthetic".
	DataSource string `json:"dataSource"`

	LLM *LLMSummary `json:"llm,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	// CachedUntil is advisory metadata only; no component enforces a
	// result cache against it.
	CachedUntil time.Time `json:"cachedUntil"`
}

// GradeLabel returns the one-line interpretation shown next to a grade
func GradeLabel(grade string) string {
	switch grade {
	case "A":
		return "Excellent. Minor tweaks only."
	case "B":
		return "Good. Key optimizations needed."
	case "C":
		return "Average. Significant gaps."
	case "D":
		return "Below average. Many issues."
	case "F":
		return "Critical. Major overhaul needed."
	default:
		return ""
	}
}
