package config

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Issue is one invalid config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError lists every invalid field of a config.
type ValidationError struct {
	Issues []Issue
}

func (err *ValidationError) Error() string {
	var b strings.Builder
	for i, issue := range err.Issues {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", issue.Field, issue.Message)
	}
	return b.String()
}

var logModes = []string{"production", "development", "quiet"}

// Validate checks a normalized config and reports all problems at once.
func Validate(cfg *Config) error {
	var issues []Issue
	fail := func(field, format string, args ...any) {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch cfg.Version {
	case 1:
	case 0:
		fail("version", "is required")
	default:
		fail("version", "unsupported version %d (only 1 is known)", cfg.Version)
	}

	if p := cfg.Model.Provider; p != ProviderOpenAI && p != ProviderOpenRouter {
		fail("model.provider", "%q is not openai or openrouter", p)
	}
	if strings.TrimSpace(cfg.Model.Name) == "" {
		fail("model.name", "is required")
	}
	if cfg.Model.MaxOutputTokens < 0 {
		fail("model.max_output_tokens", "must not be negative")
	}
	if cfg.Model.TimeoutSeconds < 0 {
		fail("model.timeout_seconds", "must not be negative")
	}

	if b := cfg.Storage.Backend; b != BackendJSONL && b != BackendDuckDB {
		fail("storage.backend", "%q is not jsonl or duckdb", b)
	}

	if t := cfg.Scoring.Threshold; math.IsNaN(t) || t <= 0 || t > 1 {
		fail("scoring.threshold", "%v is outside (0, 1]", t)
	}
	if cfg.Runner.Workers < 0 {
		fail("runner.workers", "must not be negative")
	}
	if !slices.Contains(logModes, strings.ToLower(cfg.Log.Mode)) {
		fail("log.mode", "%q is not one of %s", cfg.Log.Mode, strings.Join(logModes, ", "))
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
