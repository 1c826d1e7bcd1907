// Package vcs answers the two git questions init asks: where the work tree
// root is and whether git already ignores a path.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Git runs git with args in dir and returns its trimmed stdout.
type Git func(ctx context.Context, dir string, args ...string) (string, error)

// ExitError is a git invocation that ran and exited non-zero.
type ExitError struct {
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("git %s: exit status %d", strings.Join(e.Args, " "), e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// System runs the git binary found on PATH.
func System(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return "", &ExitError{Args: args, Code: exit.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
	}
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// DiscoverRepoRoot returns the work tree root containing startDir.
func DiscoverRepoRoot(ctx context.Context, startDir string) (string, error) {
	return Git(System).RepoRoot(ctx, startDir)
}

// IsIgnored reports whether git ignores path inside the work tree at root.
func IsIgnored(ctx context.Context, root, path string) (bool, error) {
	return Git(System).Ignored(ctx, root, path)
}

// RepoRoot runs rev-parse from startDir, or from the working directory when
// startDir is empty.
func (g Git) RepoRoot(ctx context.Context, startDir string) (string, error) {
	dir, err := filepath.Abs(strings.TrimSpace(startDir))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}
	root, err := g(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("find git root from %s: %w", dir, err)
	}
	return root, nil
}

// Ignored runs check-ignore without consulting the index, so tracked files
// matching a pattern still count as ignored. Exit status 1 means not ignored.
func (g Git) Ignored(ctx context.Context, root, path string) (bool, error) {
	if strings.TrimSpace(path) == "" {
		return false, errors.New("check ignore: empty path")
	}
	_, err := g(ctx, root, "check-ignore", "-q", "--no-index", "--", path)
	var exit *ExitError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &exit) && exit.Code == 1:
		return false, nil
	}
	return false, fmt.Errorf("check ignore %s: %w", path, err)
}
