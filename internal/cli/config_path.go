package cli

import (
	"fmt"
	"path/filepath"

	"redactbench/internal/config"
)

// resolveConfigPath returns the --config value made absolute, or the nearest
// config above the working directory when the flag is empty.
func resolveConfigPath(flagValue string) (string, error) {
	if flagValue == "" {
		return config.FindConfigPath("")
	}
	path, err := filepath.Abs(flagValue)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", flagValue, err)
	}
	return path, nil
}
