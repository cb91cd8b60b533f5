package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/localaudit/localaudit/internal/issues"
	"github.com/localaudit/localaudit/internal/llm"
	"github.com/localaudit/localaudit/internal/model"
	"github.com/localaudit/localaudit/internal/score"
)

// ErrInvalidInput is returned when a request names neither a business nor
// a place ID.
var ErrInvalidInput = errors.New("businessName or placeId is required")

// cacheValidity is how long an audit result is advertised as fresh via the
// cachedUntil field. Advisory only.
const cacheValidity = 7 * 24 * time.Hour

// AuditRequest identifies the business to audit
type AuditRequest struct {
	BusinessName string
	City         string
	PlaceID      string
}

// Pipeline runs the complete audit: fetch, merge, competitor lookup,
// website checks, scoring, issue detection, and the action plan. The
// summarizer is optional and runs strictly after scoring.
type Pipeline struct {
	provider   *DataProvider
	engine     *score.Engine
	detector   *issues.Detector
	summarizer *llm.Summarizer
	logger     *zap.Logger

	// clock is replaceable in tests; every derived timestamp and recency
	// bucket in one run comes from a single reading.
	clock func() time.Time
}

// NewPipeline assembles a pipeline from its engines
func NewPipeline(provider *DataProvider, engine *score.Engine, detector *issues.Detector, summarizer *llm.Summarizer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		provider:   provider,
		engine:     engine,
		detector:   detector,
		summarizer: summarizer,
		logger:     logger,
		clock:      time.Now,
	}
}

// Run executes one audit end to end
func (p *Pipeline) Run(ctx context.Context, req AuditRequest) (*model.AuditResult, error) {
	if req.BusinessName == "" && req.PlaceID == "" {
		return nil, ErrInvalidInput
	}
	now := p.clock()

	facts, source := p.provider.FetchAuditData(ctx, req.BusinessName, req.City, req.PlaceID, now)

	p.attachCompetitors(ctx, facts, req.City)

	summary := p.engine.Evaluate(facts, now)
	detected := p.detector.Detect(facts, now)
	plan := issues.BuildActionPlan(detected)

	result := &model.AuditResult{
		BusinessFacts: *facts,
		TotalScore:    summary.TotalScore,
		Grade:         summary.Grade,
		SectionScores: summary.SectionScores,
		CheckResults:  summary.CheckResults,
		Issues:        detected,
		ActionPlan:    *plan,
		DataSource:    source,
		CreatedAt:     now.UTC(),
		CachedUntil:   now.UTC().Add(cacheValidity),
	}

	p.logger.Info("audit complete",
		zap.String("business", result.BusinessName),
		zap.Int("score", result.TotalScore),
		zap.String("grade", result.Grade),
		zap.Int("issues", len(result.Issues)),
		zap.String("source", result.DataSource))

	if p.summarizer != nil && p.summarizer.Enabled() {
		llmSummary, err := p.summarizer.Summarize(ctx, result)
		if err != nil {
			p.logger.Warn("summary generation failed", zap.Error(err))
		} else {
			result.LLM = llmSummary
		}
	}

	return result, nil
}

// Audit is the name-and-city form of Run, satisfying the batch worker's
// Auditor interface.
func (p *Pipeline) Audit(ctx context.Context, businessName, city string) (*model.AuditResult, error) {
	return p.Run(ctx, AuditRequest{BusinessName: businessName, City: city})
}

// attachCompetitors fetches competing profiles when category and location
// are known. The fetch is best-effort: only a successful, non-empty result
// replaces whatever competitors the facts already carry, so a failed
// lookup never wipes the synthetic dataset's competitor set.
func (p *Pipeline) attachCompetitors(ctx context.Context, facts *model.BusinessFacts, city string) {
	if facts.PrimaryCategory == "" {
		return
	}
	competitorCity := city
	if competitorCity == "" {
		competitorCity = model.CityFromAddress(facts.BusinessAddress)
	}
	if competitorCity == "" {
		return
	}

	competitors, err := p.provider.FetchCompetitors(ctx, facts.PrimaryCategory, competitorCity, facts.BusinessName)
	if err != nil {
		p.logger.Warn("competitor fetch failed", zap.Error(err))
		return
	}
	if len(competitors) == 0 {
		p.logger.Debug("competitor fetch returned nothing",
			zap.String("category", facts.PrimaryCategory), zap.String("city", competitorCity))
		return
	}
	facts.Competitors = competitors
}
