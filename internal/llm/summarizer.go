package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/localaudit/localaudit/internal/model"
)

// Summarizer wraps a provider and produces the optional audit summary.
// A nil provider means summarization is disabled; the pipeline treats the
// two the same way.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer builds a summarizer for the configured provider. An empty
// provider name yields a disabled summarizer rather than an error.
func NewSummarizer(config Config) (*Summarizer, error) {
	switch config.Provider {
	case "":
		return &Summarizer{config: config}, nil
	case "openai":
		provider, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		return &Summarizer{provider: provider, config: config}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", config.Provider)
	}
}

// Enabled reports whether a provider is configured
func (s *Summarizer) Enabled() bool {
	return s != nil && s.provider != nil
}

// Summarize narrates a finished audit. It reads the result and never
// modifies it; callers attach the summary afterwards.
func (s *Summarizer) Summarize(ctx context.Context, result *model.AuditResult) (*model.LLMSummary, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("summarizer is not enabled")
	}

	summary, err := s.provider.Complete(ctx, BuildPrompt(result))
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	return &model.LLMSummary{
		Provider:    s.provider.Name(),
		Model:       s.config.Model,
		Summary:     summary,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
