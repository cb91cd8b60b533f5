package model

import "time"

// Config holds the complete runtime configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Sources     SourcesConfig     `yaml:"sources" mapstructure:"sources"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" mapstructure:"rate_limit"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls outbound HTTP behavior shared by all adapters
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// SourcesConfig holds per-provider credentials and endpoints. Base URLs are
// overridable for testing against local servers.
type SourcesConfig struct {
	SerperAPIKey      string `yaml:"serper_api_key" mapstructure:"serper_api_key"`
	SerperBaseURL     string `yaml:"serper_base_url" mapstructure:"serper_base_url"`
	OutscraperAPIKey  string `yaml:"outscraper_api_key" mapstructure:"outscraper_api_key"`
	OutscraperBaseURL string `yaml:"outscraper_base_url" mapstructure:"outscraper_base_url"`
	PageSpeedAPIKey   string `yaml:"pagespeed_api_key" mapstructure:"pagespeed_api_key"`
	PageSpeedBaseURL  string `yaml:"pagespeed_base_url" mapstructure:"pagespeed_base_url"`
}

// CacheConfig controls the layered response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig controls per-domain request pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// ConcurrencyConfig controls the batch worker pool
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// LLMConfig controls the optional report summarizer. The summary never
// affects scoring.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout   int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"` // seconds
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "localaudit/0.1 (+https://github.com/localaudit/localaudit)",
			MaxBodyBytes: 2_000_000,
		},
		Sources: SourcesConfig{
			SerperBaseURL:     "https://google.serper.dev",
			OutscraperBaseURL: "https://api.app.outscraper.com",
			PageSpeedBaseURL:  "https://www.googleapis.com/pagespeedonline/v5/runPagespeed",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		LLM: LLMConfig{
			Model:     "gpt-4o-mini",
			MaxTokens: 1000,
			Timeout:   30,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
