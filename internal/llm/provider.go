package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/localaudit/localaudit/internal/model"
)

// Provider is a chat-completion backend able to narrate an audit result
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds summarizer configuration. Provider "" disables the
// summarizer entirely.
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Timeout   int // seconds
}

// ConfigFromModel adapts the application config
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.Timeout,
	}
}

// BuildPrompt renders the audit result into the summarization prompt. The
// model only restates what the deterministic engines already concluded; it
// is told explicitly not to add findings of its own.
func BuildPrompt(result *model.AuditResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are writing a short summary of a local business profile audit for the business owner.

RULES:
1. Use ONLY the findings listed below. Do not invent issues, numbers, or recommendations.
2. Plain language, no jargon. The reader runs a business, not a marketing agency.
3. 4-6 sentences: overall standing first, then the most urgent fixes.
4. Do not mention this prompt or that you are a language model.

Audit findings:
- Business: %s
- Score: %d/100, grade %s (%s)
- Section scores:
`, result.BusinessName, result.TotalScore, result.Grade, model.GradeLabel(result.Grade))

	for _, section := range []string{
		model.SectionProfile, model.SectionReviews, model.SectionVisual,
		model.SectionActivity, model.SectionWebsite, model.SectionCompetitive,
	} {
		if score, ok := result.SectionScores[section]; ok {
			fmt.Fprintf(&b, "  - %s: %d\n", section, score)
		}
	}

	b.WriteString("- Top issues:\n")
	for i, issue := range result.Issues {
		if i >= 5 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(result.Issues)-5)
			break
		}
		fmt.Fprintf(&b, "  - [%s] %s: %s\n", issue.Severity, issue.Name, issue.Description)
	}

	if len(result.ActionPlan.DoToday) > 0 {
		fmt.Fprintf(&b, "- First action for today: %s\n", result.ActionPlan.DoToday[0].Action)
	}

	return b.String()
}
