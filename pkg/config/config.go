// Package config loads the gateway's static configuration: the origin base
// URL, the browser-origin allow-list, per-path rate limits, per-path cache
// windows, and the Zero-Trust protected prefixes. Configuration is loaded
// once at startup and never mutated afterwards.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// CacheRule configures the freshness windows for one cacheable path.
type CacheRule struct {
	// TTLSeconds is the window during which an entry is fresh (served as HIT).
	TTLSeconds int `koanf:"ttl_seconds"`

	// SWRSeconds is the stale-while-revalidate window. Entries older than the
	// TTL but younger than this are served as STALE; past it they are gone.
	SWRSeconds int `koanf:"swr_seconds"`
}

// TTL returns the fresh window as a duration.
func (r CacheRule) TTL() time.Duration { return time.Duration(r.TTLSeconds) * time.Second }

// SWR returns the stale-while-revalidate window as a duration.
func (r CacheRule) SWR() time.Duration { return time.Duration(r.SWRSeconds) * time.Second }

// Config holds the full gateway configuration.
type Config struct {
	// Server
	Port     int    `koanf:"port"`
	LogLevel string `koanf:"log_level"`

	// OriginBaseURL is the backend every request is forwarded to.
	OriginBaseURL string `koanf:"origin_base_url"`

	// UpstreamTimeoutSeconds bounds a single origin fetch. Streaming paths
	// are exempt so SSE connections can stay open.
	UpstreamTimeoutSeconds int `koanf:"upstream_timeout_seconds"`

	// AllowedOrigins is the exact-match browser origin allow-list.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// RateLimits maps request paths to requests-per-minute ceilings.
	// Paths without an entry fall back to DefaultRateLimit.
	RateLimits       map[string]int `koanf:"rate_limits"`
	DefaultRateLimit int            `koanf:"default_rate_limit"`

	// CacheRules maps GET paths to their freshness windows. Paths without an
	// entry are never cached.
	CacheRules map[string]CacheRule `koanf:"cache_rules"`

	// ProtectedPrefixes lists path prefixes that require the Zero-Trust
	// access assertion header.
	ProtectedPrefixes []string `koanf:"protected_prefixes"`

	// Redis
	RedisAddr string `koanf:"redis_addr"`
}

// Default returns the compiled-in configuration matching the production
// deployment. Every field can be overridden via config file or environment.
func Default() Config {
	return Config{
		Port:                   8080,
		LogLevel:               "info",
		OriginBaseURL:          "https://api.dividendspro.com",
		UpstreamTimeoutSeconds: 30,
		AllowedOrigins: []string{
			"https://dividendspro.com",
			"https://www.dividendspro.com",
			"http://localhost:5173",
		},
		RateLimits: map[string]int{
			"/api/auth/challenge":       10,
			"/api/auth/verify":          10,
			"/api/community/chat/send":  20,
			"/api/community/raids/join": 10,
			"/api/buy-stream":           60,
			"/api/upgrade-stream":       60,
		},
		DefaultRateLimit: 120,
		CacheRules: map[string]CacheRule{
			"/api/market/prices": {TTLSeconds: 120, SWRSeconds: 600},
			"/api/holders":       {TTLSeconds: 300, SWRSeconds: 900},
		},
		ProtectedPrefixes: []string{
			"/api/admin",
			"/api/community/chat/moderate",
			"/api/community/raids/create",
			"/api/community/raids/cancel",
		},
		RedisAddr: "localhost:6379",
	}
}

// Load builds the configuration from defaults, an optional YAML file
// (EDGE_CONFIG_FILE or configPath), and EDGE_-prefixed environment variables,
// in increasing order of precedence.
func Load(configPath string) (Config, error) {
	cfg := Default()

	k := koanf.New(".")

	if configPath == "" {
		configPath = os.Getenv("EDGE_CONFIG_FILE")
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("EDGE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "EDGE_")), "__", ".")
	}), nil); err != nil {
		return cfg, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the gateway cannot run with.
func (c Config) Validate() error {
	if c.OriginBaseURL == "" {
		return fmt.Errorf("origin_base_url is required")
	}
	if !strings.HasPrefix(c.OriginBaseURL, "http://") && !strings.HasPrefix(c.OriginBaseURL, "https://") {
		return fmt.Errorf("origin_base_url must be an http(s) URL (got %q)", c.OriginBaseURL)
	}
	if c.DefaultRateLimit <= 0 {
		return fmt.Errorf("default_rate_limit must be positive (got %d)", c.DefaultRateLimit)
	}
	for path, limit := range c.RateLimits {
		if limit <= 0 {
			return fmt.Errorf("rate limit for %s must be positive (got %d)", path, limit)
		}
	}
	for path, rule := range c.CacheRules {
		if rule.TTLSeconds <= 0 {
			return fmt.Errorf("cache ttl for %s must be positive (got %d)", path, rule.TTLSeconds)
		}
		if rule.SWRSeconds < rule.TTLSeconds {
			return fmt.Errorf("cache swr for %s must be >= ttl (got ttl=%d swr=%d)",
				path, rule.TTLSeconds, rule.SWRSeconds)
		}
	}
	if c.UpstreamTimeoutSeconds <= 0 {
		return fmt.Errorf("upstream_timeout_seconds must be positive (got %d)", c.UpstreamTimeoutSeconds)
	}
	return nil
}

// UpstreamTimeout returns the upstream fetch bound as a duration.
func (c Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}
