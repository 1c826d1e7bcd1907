package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"redactbench/internal/config"
	"redactbench/internal/logger"
	"redactbench/internal/metrics"
	"redactbench/internal/testutil"
)

// TestRunHelp verifies top-level help lists every command.
func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"--help"}, &stdout, &stderr); code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	for _, cmd := range commands {
		if !strings.Contains(stdout.String(), cmd.Name) {
			t.Fatalf("expected help to mention %q:\n%s", cmd.Name, stdout.String())
		}
	}
}

// TestRunNoArgs verifies a bare invocation prints usage with a usage exit code.
func TestRunNoArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := Run(nil, &stdout, &stderr); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(stdout.String(), "Usage:") {
		t.Fatalf("expected usage, got %q", stdout.String())
	}
}

// TestRunUnknownCommand verifies unknown commands are rejected.
func TestRunUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"nope"}, &stdout, &stderr); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(stderr.String(), "Unknown command: nope") {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
}

// TestCommandHelp verifies every command prints its own usage.
func TestCommandHelp(t *testing.T) {
	for _, cmd := range commands {
		t.Run(cmd.Name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := Run([]string{cmd.Name, "--help"}, &stdout, &stderr); code != ExitOK {
				t.Fatalf("expected exit %d, got %d (stderr %q)", ExitOK, code, stderr.String())
			}
			if !strings.Contains(stdout.String(), "redactbench "+cmd.Name) {
				t.Fatalf("expected usage line for %s, got %q", cmd.Name, stdout.String())
			}
		})
	}
}

// TestUnexpectedArguments verifies stray positionals are a usage error.
func TestUnexpectedArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"items", "extra"}, &stdout, &stderr); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(stderr.String(), "unexpected arguments: extra") {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
}

// setupProject writes a quiet config into a temp dir and returns its path.
func setupProject(t *testing.T, extra string) string {
	t.Helper()
	t.Setenv(config.EnvProvider, "")
	t.Setenv(config.EnvModel, "")
	root := t.TempDir()
	path := config.ConfigPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := "version: 1\nlog:\n  mode: quiet\nrunner:\n  workers: 2\n" + extra
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// useFakeOracles swaps the model client for in-memory fakes.
func useFakeOracles(t *testing.T, answers map[string]string, scores map[string]float64, gen *testutil.FakeGenerator) {
	t.Helper()
	original := newOracles
	t.Cleanup(func() { newOracles = original })
	newOracles = func(config.Config, *logger.Logger, *metrics.Metrics) (oracleSet, error) {
		set := oracleSet{
			answerer: &testutil.FakeAnswerer{Answers: answers},
			judge:    &testutil.FakeJudge{Scores: scores},
		}
		if gen != nil {
			set.generator = gen
		}
		return set, nil
	}
}

// run executes a command against cfgPath and fails the test on a non-zero exit.
func run(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{args[0], "--config", cfgPath}, args[1:]...)
	if code := Run(full, &stdout, &stderr); code != ExitOK {
		t.Fatalf("%s exited %d\nstdout: %s\nstderr: %s", args[0], code, stdout.String(), stderr.String())
	}
	return stdout.String()
}

// runExpect executes a command and returns its exit code with both streams.
func runExpect(cfgPath string, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	full := append([]string{args[0], "--config", cfgPath}, args[1:]...)
	code := Run(full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}
