package ratelimit

import (
	"time"
)

// Rule limits one route. Pattern segments written as "*" match any single
// path segment, so "/questions/*/feedback" covers every question id.
type Rule struct {
	Method  string
	Pattern string

	// Limit is requests per Window; 0 means unlimited.
	Limit  int
	Window time.Duration

	// Burst defaults to Limit when 0.
	Burst int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultRPS      float64
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Rules           []Rule
}

// NewConfig builds a configuration from the per-client default rate. Routes
// that call the AI service get the stricter rules from AIRules.
func NewConfig(enabled bool, rps float64, burst int) *Config {
	return &Config{
		Enabled:         enabled,
		DefaultRPS:      rps,
		DefaultBurst:    burst,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Rules:           AIRules(),
	}
}

// AIRules returns the limits for endpoints backed by the AI service.
func AIRules() []Rule {
	return []Rule{
		// Health checks are never limited
		{Method: "GET", Pattern: "/health", Limit: 0},

		// Generation is the most expensive
		{Method: "POST", Pattern: "/questions/generate", Limit: 20, Window: time.Minute, Burst: 3},
		{Method: "POST", Pattern: "/intro", Limit: 20, Window: time.Minute, Burst: 3},
		{Method: "POST", Pattern: "/intro/refine", Limit: 20, Window: time.Minute, Burst: 3},

		// Short answers and conversation turns
		{Method: "POST", Pattern: "/questions/*/feedback", Limit: 60, Window: time.Minute, Burst: 5},
		{Method: "POST", Pattern: "/session/start", Limit: 30, Window: time.Minute, Burst: 5},
		{Method: "POST", Pattern: "/session/unlock", Limit: 30, Window: time.Minute, Burst: 5},
		{Method: "POST", Pattern: "/session/turn", Limit: 60, Window: time.Minute, Burst: 10},
	}
}
