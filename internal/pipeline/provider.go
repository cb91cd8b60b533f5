package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/localaudit/localaudit/internal/model"
	"github.com/localaudit/localaudit/internal/sources"
)

// BaselineSource is the fast, always-first profile source
type BaselineSource interface {
	Configured() bool
	BusinessDetails(ctx context.Context, name, city, placeID string, now time.Time) (*model.BusinessFacts, error)
	Competitors(ctx context.Context, category, city, excludeName string) ([]model.Competitor, error)
}

// DeepSource enriches the baseline with fields it cannot see
type DeepSource interface {
	Configured() bool
	FullBusinessData(ctx context.Context, query string, now time.Time) (*model.BusinessFacts, error)
}

// WebsiteChecker measures the linked website
type WebsiteChecker interface {
	CheckWebsite(ctx context.Context, url string) (*sources.WebsiteCheck, error)
}

// NAPChecker looks for the business name and phone on the homepage
type NAPChecker interface {
	CheckNAP(ctx context.Context, url, businessName, phone string) (bool, error)
}

// DataProvider orchestrates the source adapters with graceful degradation:
// every stage that fails leaves the record as the previous stage built it,
// and only a total failure falls back to the synthetic dataset. Deep and
// website checkers may be nil when unconfigured.
type DataProvider struct {
	baseline BaselineSource
	deep     DeepSource
	website  WebsiteChecker
	nap      NAPChecker
	logger   *zap.Logger
}

// NewDataProvider wires the source adapters together
func NewDataProvider(baseline BaselineSource, deep DeepSource, website WebsiteChecker, nap NAPChecker, logger *zap.Logger) *DataProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataProvider{
		baseline: baseline,
		deep:     deep,
		website:  website,
		nap:      nap,
		logger:   logger,
	}
}

// FetchAuditData assembles the best available facts record for a business
// and reports which sources contributed, joined with "+" in fetch order.
// The returned record is never nil: when every source fails the synthetic
// dataset stands in and the provenance is "synthetic".
func (p *DataProvider) FetchAuditData(ctx context.Context, name, city, placeID string, now time.Time) (*model.BusinessFacts, string) {
	var facts *model.BusinessFacts
	source := "synthetic"

	if p.baseline != nil && p.baseline.Configured() {
		p.logger.Debug("baseline fetch", zap.String("business", name), zap.String("city", city))
		base, err := p.baseline.BusinessDetails(ctx, name, city, placeID, now)
		if err != nil {
			p.logger.Warn("baseline source failed", zap.Error(err))
		} else {
			facts = base
			source = "serper"
			p.logger.Debug("baseline result",
				zap.String("name", facts.BusinessName), zap.Int("reviews", facts.ReviewCount))
		}
	}

	if p.deep != nil && p.deep.Configured() {
		query := deepQuery(facts, name, city)
		p.logger.Debug("deep fetch", zap.String("query", query))
		deep, err := p.deep.FullBusinessData(ctx, query, now)
		if err != nil {
			p.logger.Warn("deep source failed", zap.Error(err))
		} else {
			if facts == nil {
				facts = deep
				source = "outscraper"
			} else {
				facts = MergeFacts(facts, deep)
				source = "serper+outscraper"
			}
		}
	}

	if facts == nil {
		p.logger.Info("all sources failed, using synthetic dataset")
		facts = SyntheticFacts(name, city, now)
	}

	// The website stage runs even on the synthetic record, since the linked
	// site is real and measurable. Only the provenance stays "synthetic":
	// the performance suffix would overstate how much of the record is live.
	if facts.WebsiteURL != "" {
		if p.applyWebsiteChecks(ctx, facts) && source != "synthetic" {
			source += "+pagespeed"
		}
	}
	return facts, source
}

// applyWebsiteChecks runs the performance and NAP checks in place and
// reports whether the performance check contributed. Failures keep
// whatever the profile sources already claimed about the website.
func (p *DataProvider) applyWebsiteChecks(ctx context.Context, facts *model.BusinessFacts) bool {
	applied := false
	if p.website != nil {
		check, err := p.website.CheckWebsite(ctx, facts.WebsiteURL)
		if err != nil {
			p.logger.Warn("website check failed", zap.String("url", facts.WebsiteURL), zap.Error(err))
		} else {
			facts.WebsiteHTTPS = check.HTTPSValid
			facts.WebsiteLoads = check.Loads
			facts.WebsiteMobile = check.MobileResponsive
			facts.WebsiteMobileScore = check.MobileScore
			facts.WebsiteDesktopScore = check.DesktopScore
			facts.WebsiteLoadSpeedMS = check.LoadSpeedMS
			applied = true
		}
	}
	if p.nap != nil && facts.WebsiteLoads {
		found, err := p.nap.CheckNAP(ctx, facts.WebsiteURL, facts.BusinessName, facts.Phone)
		if err != nil {
			p.logger.Warn("nap check failed", zap.String("url", facts.WebsiteURL), zap.Error(err))
		} else {
			facts.WebsiteHasNAP = found
		}
	}
	return applied
}

// FetchCompetitors returns up to three competing profiles, or an error
// when the baseline source is unavailable.
func (p *DataProvider) FetchCompetitors(ctx context.Context, category, city, excludeName string) ([]model.Competitor, error) {
	if p.baseline == nil || !p.baseline.Configured() {
		return nil, fmt.Errorf("no competitor source configured")
	}
	return p.baseline.Competitors(ctx, category, city, excludeName)
}

// deepQuery builds the "Name, Location" text query the deep source matches
// best on, preferring names the baseline source already resolved.
func deepQuery(facts *model.BusinessFacts, name, city string) string {
	if facts != nil && facts.BusinessName != "" {
		name = facts.BusinessName
	}
	location := city
	if location == "" && facts != nil {
		location = facts.BusinessAddress
	}
	if location == "" {
		return name
	}
	return fmt.Sprintf("%s, %s", name, location)
}
