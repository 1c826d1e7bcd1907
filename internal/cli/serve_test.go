package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"redactbench/internal/reportserver"
)

// TestServeWiresStore verifies serve hands the stored items to the report server.
func TestServeWiresStore(t *testing.T) {
	project := setupProject(t, "")
	run(t, project, "original-set", "--body", "served text")

	original := serveReport
	t.Cleanup(func() { serveReport = original })
	var got reportserver.Config
	serveReport = func(ctx context.Context, cfg reportserver.Config) error {
		got = cfg
		items, err := cfg.Source(ctx)
		if err != nil {
			return err
		}
		if len(items) != 1 || items[0].Original().Text != "served text" {
			return errors.New("unexpected items from source")
		}
		return nil
	}

	out := run(t, project, "serve", "--addr", "127.0.0.1:0")
	if !strings.Contains(out, "Serving report at http://127.0.0.1:0") {
		t.Fatalf("unexpected output: %q", out)
	}
	if got.Threshold != 0.8 || got.Metrics == nil {
		t.Fatalf("unexpected server config: %+v", got)
	}
}

// TestServeReportsErrors verifies server failures map to an error exit.
func TestServeReportsErrors(t *testing.T) {
	project := setupProject(t, "")
	original := serveReport
	t.Cleanup(func() { serveReport = original })
	serveReport = func(context.Context, reportserver.Config) error {
		return errors.New("address in use")
	}
	code, _, stderr := runExpect(project, "serve")
	if code != ExitError || !strings.Contains(stderr, "address in use") {
		t.Fatalf("expected server error, got %d %q", code, stderr)
	}
}
