package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Location of the config file inside a project.
const (
	ConfigDirName  = ".redactbench"
	ConfigFileName = "config.yml"
)

// ErrNotFound reports that no config file exists above the start directory.
var ErrNotFound = errors.New("no redactbench config found")

// ConfigPath returns root/.redactbench/config.yml.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigDirName, ConfigFileName)
}

// RepoRootFromConfigPath returns the project directory owning a config: the
// parent of .redactbench, or the file's own directory for a config kept
// anywhere else.
func RepoRootFromConfigPath(configPath string) string {
	dir := filepath.Dir(configPath)
	if filepath.Base(dir) != ConfigDirName {
		return dir
	}
	return filepath.Dir(dir)
}

// FindConfigPath walks from startDir (default: the working directory) up to
// the filesystem root and returns the first config file it meets.
func FindConfigPath(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}
	for dir := start; ; dir = filepath.Dir(dir) {
		candidate := ConfigPath(dir)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.IsDir():
			return "", fmt.Errorf("%s is a directory", candidate)
		case err == nil:
			return candidate, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		if filepath.Dir(dir) == dir {
			return "", fmt.Errorf("%w in %s or its parents; run redactbench init", ErrNotFound, start)
		}
	}
}
