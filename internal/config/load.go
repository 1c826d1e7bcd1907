package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Load reads, parses, normalizes, applies environment overrides to, and
// validates a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	Normalize(&cfg)
	ApplyEnv(&cfg, os.Getenv)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// StoragePath resolves the storage path against the repo root.
func (cfg Config) StoragePath(repoRoot string) string {
	if filepath.IsAbs(cfg.Storage.Path) {
		return cfg.Storage.Path
	}
	return filepath.Join(repoRoot, cfg.Storage.Path)
}

// Timeout returns the per-call model timeout.
func (cfg Config) Timeout() time.Duration {
	return time.Duration(cfg.Model.TimeoutSeconds) * time.Second
}
