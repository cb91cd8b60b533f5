package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/localaudit/localaudit/internal/cache"
	"github.com/localaudit/localaudit/internal/model"
	"github.com/localaudit/localaudit/internal/worker"
)

// Transport bundles the outbound HTTP concerns shared by all provider
// adapters: per-domain rate limiting, response caching, and body size
// limits. Cache and limiter are optional; a nil field disables that
// concern.
type Transport struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	userAgent  string
	maxBytes   int64
	logger     *zap.Logger
}

// NewTransport creates a transport from the shared HTTP configuration
func NewTransport(cfg model.HTTPConfig, c cache.Cache, cacheTTL time.Duration, limiter *worker.Limiter, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		cache:      c,
		cacheTTL:   cacheTTL,
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBodyBytes,
		logger:     logger,
	}
}

// request describes one provider call
type request struct {
	method    string
	url       string
	body      []byte
	headers   map[string]string
	cacheable bool
}

// do executes the request and returns the response body. Cacheable 2xx
// responses are stored under a key derived from method, URL, and body.
// Non-2xx responses are returned as errors carrying a payload snippet.
func (t *Transport) do(ctx context.Context, r request) ([]byte, error) {
	key := cache.Key(r.method, r.url, string(r.body))
	if r.cacheable && t.cache != nil {
		if body, found := t.cache.Get(key); found {
			t.logger.Debug("cache hit", zap.String("url", r.url))
			return body, nil
		}
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx, r.url); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var reqBody io.Reader
	if len(r.body) > 0 {
		reqBody = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", t.userAgent)
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet(body, 300))
	}

	if r.cacheable && t.cache != nil {
		if err := t.cache.Set(key, body, t.cacheTTL); err != nil {
			t.logger.Warn("cache write failed", zap.String("url", r.url), zap.Error(err))
		}
	}
	return body, nil
}

// forget drops a previously cached response, used when a provider returned
// a transient payload (such as a pending job envelope) that must not be
// served again.
func (t *Transport) forget(r request) {
	if t.cache == nil {
		return
	}
	_ = t.cache.Delete(cache.Key(r.method, r.url, string(r.body)))
}

func snippet(body []byte, n int) string {
	if len(body) > n {
		body = body[:n]
	}
	return string(body)
}
