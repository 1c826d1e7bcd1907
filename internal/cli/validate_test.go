package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// TestValidateCommand verifies a valid config is reported with its effective settings.
func TestValidateCommand(t *testing.T) {
	project := setupProject(t, "")
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"validate", "--config", project}, &stdout, &stderr); code != ExitOK {
		t.Fatalf("expected exit %d, got %d (%s)", ExitOK, code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Config OK") || !strings.Contains(stdout.String(), "storage  jsonl") || !strings.Contains(stdout.String(), "threshold 0.80, 2 worker(s)") {
		t.Fatalf("unexpected output: %q", stdout.String())
	}
}

// TestValidateCommandReportsIssues verifies invalid values are listed.
func TestValidateCommandReportsIssues(t *testing.T) {
	project := setupProject(t, "scoring:\n  threshold: 2\n")
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"validate", "--config", project}, &stdout, &stderr); code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(stderr.String(), "scoring.threshold") {
		t.Fatalf("expected threshold issue, got %q", stderr.String())
	}
}

// TestValidateCommandMissingFile verifies a missing config is an error.
func TestValidateCommandMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := t.TempDir() + "/missing.yml"
	if code := Run([]string{"validate", "--config", path}, &stdout, &stderr); code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("validate must not create the file")
	}
}
