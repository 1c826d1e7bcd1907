package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const importLine = `{"id":"item-a","texts":[{"text":"Carol met Dan."},{"id":"v1","text":"[NAME] met Dan.","label":"names"}],"qa":[{"id":"q1","q":"Who met Dan?","a":"Carol","redact":true}],"answers":{"v1":{"q1":{"value":"unknown","score":0},"missing":{"value":"x"}}}}`

// TestImportReplacesBlankStore verifies a fresh store takes the imported items as-is.
func TestImportReplacesBlankStore(t *testing.T) {
	project := setupProject(t, "")
	path := filepath.Join(t.TempDir(), "in.jsonl")
	if err := os.WriteFile(path, []byte(importLine+"\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out := run(t, project, "import", path)
	for _, want := range []string{"Imported 1 item(s)", "Derived 1 missing original id(s)", "Dropped 1 answer(s)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	listed := run(t, project, "items")
	if lines := strings.Split(strings.TrimSpace(listed), "\n"); len(lines) != 1 || !strings.Contains(listed, "item-a") {
		t.Fatalf("expected only the imported item, got:\n%s", listed)
	}
}

// TestImportRejectsCollisions verifies a second import of the same ids adds nothing.
func TestImportRejectsCollisions(t *testing.T) {
	project := setupProject(t, "")
	path := filepath.Join(t.TempDir(), "in.jsonl")
	if err := os.WriteFile(path, []byte(importLine+"\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	run(t, project, "import", path)

	code, _, stderr := runExpect(project, "import", path)
	if code != ExitError || !strings.Contains(stderr, "nothing was added") || !strings.Contains(stderr, "line 1: id") {
		t.Fatalf("expected collision error, got %d %q", code, stderr)
	}
}

// TestExportRoundTrip verifies exported lines import into another project.
func TestExportRoundTrip(t *testing.T) {
	project := setupProject(t, "")
	seedItem(t, project)
	run(t, project, "item-add", "--body", "another")

	out := filepath.Join(t.TempDir(), "nested", "out.jsonl")
	if msg := run(t, project, "export", out); !strings.Contains(msg, "Exported 2 item(s)") {
		t.Fatalf("unexpected output: %q", msg)
	}

	other := setupProject(t, "storage:\n  path: other.jsonl\n")
	if msg := run(t, other, "import", out); !strings.Contains(msg, "Imported 2 item(s)") {
		t.Fatalf("unexpected import output: %q", msg)
	}
	shown := run(t, other, "show")
	if !strings.Contains(shown, "Alice lives in [STATE].") || !strings.Contains(shown, "[redact] Which state? -> Minnesota") {
		t.Fatalf("unexpected re-imported item:\n%s", shown)
	}
}

// TestExportStdout verifies export without a path writes JSON Lines to stdout.
func TestExportStdout(t *testing.T) {
	project := setupProject(t, "")
	run(t, project, "original-set", "--body", "hello")
	out := run(t, project, "export")
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"text":"hello"`) {
		t.Fatalf("unexpected export: %q", out)
	}
}
