package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// gitignoreEntry turns a data path into a root-anchored .gitignore pattern.
func gitignoreEntry(repoRoot, dataPath string) (string, error) {
	if strings.TrimSpace(dataPath) == "" {
		return "", errors.New("data path is required")
	}
	rel := filepath.Clean(dataPath)
	if filepath.IsAbs(rel) {
		var err error
		if rel, err = filepath.Rel(repoRoot, rel); err != nil {
			return "", fmt.Errorf("relativize data path: %w", err)
		}
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("data path %q is outside the repo root", dataPath)
	}
	return "/" + filepath.ToSlash(rel), nil
}

// ensureGitignored appends the data path pattern to the repo .gitignore. It
// reports false when the exact pattern was already listed.
func ensureGitignored(repoRoot, dataPath string) (bool, error) {
	entry, err := gitignoreEntry(repoRoot, dataPath)
	if err != nil {
		return false, err
	}
	path := filepath.Join(repoRoot, ".gitignore")
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("read .gitignore: %w", err)
	}
	content := string(data)
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	if slices.Contains(lines, entry) {
		return false, nil
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content+entry+"\n"), 0o644); err != nil {
		return false, fmt.Errorf("write .gitignore: %w", err)
	}
	return true, nil
}
