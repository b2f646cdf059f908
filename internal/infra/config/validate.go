package config

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxSearchAttempts bounds search.max_attempts.
const MaxSearchAttempts = 10

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
//
// A missing API key is not reported here: commands that never reach the
// provider (encrypt, help) must work without one. The search client enforces
// it at construction.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateSearch(cfg, ve)
	validateServer(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateSearch(cfg *Config, ve *ValidationError) {
	s := cfg.Search
	if s.TopN < 1 {
		ve.Add("search.top_n must be >= 1")
	}
	if s.MaxAttempts < 1 {
		ve.Add("search.max_attempts must be >= 1")
	}
	if s.MaxAttempts > MaxSearchAttempts {
		ve.Add("search.max_attempts must be <= %d", MaxSearchAttempts)
	}
	if s.Timeout <= 0 {
		ve.Add("search.timeout must be > 0")
	}
	if s.InitialBackoff < 0 {
		ve.Add("search.initial_backoff must be >= 0")
	}
	validateEndpoint("search.web_url", s.WebURL, ve)
	validateEndpoint("search.news_url", s.NewsURL, ve)
	if s.Pool.MaxIdleConns < 0 || s.Pool.MaxIdleConnsPerHost < 0 || s.Pool.IdleConnTimeout < 0 {
		ve.Add("search.pool values must be >= 0")
	}
}

func validateEndpoint(field, raw string, ve *ValidationError) {
	if raw == "" {
		ve.Add("%s must not be empty", field)
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		ve.Add("%s must be an absolute http(s) URL, got %q", field, raw)
	}
}

func validateServer(cfg *Config, ve *ValidationError) {
	if cfg.Server.RatePerSec < 0 {
		ve.Add("server.rate_per_sec must be >= 0")
	}
	if cfg.Server.RatePerSec > 0 && cfg.Server.Burst < 1 {
		ve.Add("server.burst must be >= 1 when rate_per_sec is set")
	}
}

var validLogLevels = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLogLevels[strings.ToLower(cfg.Logger.Level)] {
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	switch strings.ToLower(cfg.Logger.Format) {
	case "", "text", "json":
	default:
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	default:
		ve.Add("tracer.exporter %q is invalid (want: noop, stdout)", cfg.Tracer.Exporter)
	}
}
