package jsonl

import (
	"os"
	"path/filepath"
	"testing"

	"redactbench/internal/record"
	"redactbench/internal/testutil"
)

// TestLoadMissingFile verifies a missing file is an empty collection.
func TestLoadMissingFile(t *testing.T) {
	file := New(filepath.Join(t.TempDir(), "data.jsonl"))
	items, err := file.Load(testutil.Context(t, 0))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

// TestSaveThenOpen verifies the store survives a save and reload.
func TestSaveThenOpen(t *testing.T) {
	ctx := testutil.Context(t, 0)
	path := filepath.Join(t.TempDir(), "nested", "data.jsonl")
	file := New(path)

	store := record.NewStore()
	itemID, _ := store.Current()
	store.SetOriginalText(itemID, "Alice lives in Minnesota.")
	variant, _ := store.AddRedactedVariant(itemID, "Alice lives in [STATE].", "v1")
	qa, _ := store.AddQA(itemID, "Where?", "Minnesota", true)
	store.RecordAnswer(itemID, variant.ID, qa.ID, "unknown")
	store.RecordScore(itemID, variant.ID, qa.ID, 0)
	if err := store.SaveTo(ctx, file); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away")
	}

	reopened, err := record.Open(ctx, file)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	item, ok := reopened.Item(itemID)
	if !ok {
		t.Fatalf("expected item %s after reload", itemID)
	}
	rec, ok := item.Answer(variant.ID, qa.ID)
	if !ok || rec.Score == nil || *rec.Score != 0 {
		t.Fatalf("expected scored record after reload, got %+v", rec)
	}
	if _, selected := reopened.Current(); selected != variant.ID {
		t.Fatalf("expected first variant selected after reload, got %s", selected)
	}
}

// TestLoadRejectsCorruptFile verifies invalid content surfaces an error.
func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(path).Load(testutil.Context(t, 0)); err == nil {
		t.Fatalf("expected decode error")
	}
}
