package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/localaudit/localaudit/internal/model"
)

const pagespeedTimeout = 30 * time.Second

// PageSpeedClient measures website performance through the PageSpeed
// Insights API. An API key is optional; without one the API still answers,
// just at a lower rate limit.
type PageSpeedClient struct {
	transport *Transport
	apiKey    string
	baseURL   string
	logger    *zap.Logger
}

// NewPageSpeedClient creates a PageSpeed Insights adapter
func NewPageSpeedClient(cfg model.SourcesConfig, transport *Transport, logger *zap.Logger) *PageSpeedClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageSpeedClient{
		transport: transport,
		apiKey:    cfg.PageSpeedAPIKey,
		baseURL:   cfg.PageSpeedBaseURL,
		logger:    logger,
	}
}

// WebsiteCheck is the outcome of auditing one website URL
type WebsiteCheck struct {
	HTTPSValid       bool
	Loads            bool
	MobileResponsive bool
	MobileFriendly   bool
	MobileScore      *int
	DesktopScore     *int
	LoadSpeedMS      *int
}

type pagespeedResponse struct {
	LighthouseResult struct {
		Categories struct {
			Performance struct {
				Score *float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
		Audits map[string]struct {
			NumericValue *float64 `json:"numericValue"`
		} `json:"audits"`
	} `json:"lighthouseResult"`
}

// CheckWebsite runs mobile and desktop strategies in parallel, each with
// its own timeout, and joins whatever succeeded. Only when both strategies
// fail does it return an error; one successful strategy is enough for a
// usable check.
func (c *PageSpeedClient) CheckWebsite(ctx context.Context, rawURL string) (*WebsiteCheck, error) {
	if rawURL == "" {
		return &WebsiteCheck{}, nil
	}
	normalized := normalizeURL(rawURL)

	type strategyResult struct {
		strategy string
		resp     *pagespeedResponse
		err      error
	}
	results := make(chan strategyResult, 2)
	for _, strategy := range []string{"mobile", "desktop"} {
		go func(strategy string) {
			strategyCtx, cancel := context.WithTimeout(ctx, pagespeedTimeout)
			defer cancel()
			resp, err := c.run(strategyCtx, normalized, strategy)
			results <- strategyResult{strategy: strategy, resp: resp, err: err}
		}(strategy)
	}

	var mobile, desktop *pagespeedResponse
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err != nil {
			c.logger.Debug("pagespeed strategy failed",
				zap.String("strategy", r.strategy), zap.Error(r.err))
			continue
		}
		if r.strategy == "mobile" {
			mobile = r.resp
		} else {
			desktop = r.resp
		}
	}

	if mobile == nil && desktop == nil {
		return nil, fmt.Errorf("pagespeed check failed for %s on both strategies", normalized)
	}

	check := &WebsiteCheck{
		HTTPSValid:       strings.HasPrefix(normalized, "https"),
		Loads:            true,
		MobileResponsive: true,
		MobileFriendly:   true,
	}

	if mobile != nil {
		if score := mobile.LighthouseResult.Categories.Performance.Score; score != nil {
			rounded := int(*score*100 + 0.5)
			check.MobileScore = &rounded
			check.MobileResponsive = rounded > 30
			check.MobileFriendly = rounded > 50
		}
		if audit, ok := mobile.LighthouseResult.Audits["first-contentful-paint"]; ok && audit.NumericValue != nil {
			ms := int(*audit.NumericValue + 0.5)
			check.LoadSpeedMS = &ms
		}
	}
	if desktop != nil {
		if score := desktop.LighthouseResult.Categories.Performance.Score; score != nil {
			rounded := int(*score*100 + 0.5)
			check.DesktopScore = &rounded
		}
	}

	c.logger.Debug("pagespeed check done",
		zap.String("url", normalized),
		zap.Intp("mobile", check.MobileScore),
		zap.Intp("desktop", check.DesktopScore))
	return check, nil
}

func (c *PageSpeedClient) run(ctx context.Context, pageURL, strategy string) (*pagespeedResponse, error) {
	params := url.Values{}
	params.Set("url", pageURL)
	params.Set("strategy", strategy)
	params.Set("category", "performance")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	body, err := c.transport.do(ctx, request{
		method:    "GET",
		url:       c.baseURL + "?" + params.Encode(),
		cacheable: true,
	})
	if err != nil {
		return nil, fmt.Errorf("pagespeed %s: %w", strategy, err)
	}

	var resp pagespeedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse pagespeed response: %w", err)
	}
	return &resp, nil
}

func normalizeURL(rawURL string) string {
	if strings.HasPrefix(rawURL, "http") {
		return rawURL
	}
	return "https://" + rawURL
}
