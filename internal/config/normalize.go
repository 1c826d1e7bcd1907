package config

import (
	"os"
	"strings"

	"redactbench/internal/score"
)

// Defaults applied by Normalize.
const (
	DefaultModel           = "gpt-4.1-mini"
	DefaultStoragePath     = "data.jsonl"
	DefaultMaxOutputTokens = 4096
	DefaultTimeoutSeconds  = 120
	DefaultWorkers         = 8
	DefaultLogMode         = "development"
)

// Normalize fills defaults for omitted fields.
func Normalize(cfg *Config) {
	cfg.Model.Provider = strings.ToLower(strings.TrimSpace(cfg.Model.Provider))
	if cfg.Model.Provider == "" {
		cfg.Model.Provider = ProviderOpenAI
	}
	if strings.TrimSpace(cfg.Model.Name) == "" {
		cfg.Model.Name = DefaultModel
	}
	if cfg.Model.MaxOutputTokens == 0 {
		cfg.Model.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if cfg.Model.TimeoutSeconds == 0 {
		cfg.Model.TimeoutSeconds = DefaultTimeoutSeconds
	}
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendJSONL
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		cfg.Storage.Path = DefaultStoragePath
		if cfg.Storage.Backend == BackendDuckDB {
			cfg.Storage.Path = "data.duckdb"
		}
	}
	if cfg.Scoring.Threshold == 0 {
		cfg.Scoring.Threshold = score.DefaultThreshold
	}
	if cfg.Runner.Workers == 0 {
		cfg.Runner.Workers = DefaultWorkers
	}
	if strings.TrimSpace(cfg.Log.Mode) == "" {
		cfg.Log.Mode = DefaultLogMode
	}
}

// ApplyEnv overrides provider and model from the environment.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if value := strings.TrimSpace(getenv(EnvProvider)); value != "" {
		cfg.Model.Provider = strings.ToLower(value)
	}
	if value := strings.TrimSpace(getenv(EnvModel)); value != "" {
		cfg.Model.Name = value
	}
}
