package reportserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"redactbench/internal/dataset"
	"redactbench/internal/metrics"
	"redactbench/internal/record"
)

func staticSource(items []record.Item) Source {
	return func(context.Context) ([]record.Item, error) { return items, nil }
}

func sampleItems() []record.Item {
	store := record.NewStore()
	itemID, _ := store.Current()
	store.SetOriginalText(itemID, "Alice lives in Minnesota.")
	store.AddRedactedVariant(itemID, "Alice lives in [STATE].", "v1")
	store.AddQA(itemID, "Where?", "Minnesota", true)
	return store.Items()
}

func get(t *testing.T, handler http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "http://example.com"+path, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

// TestNewHandlerServesHTML ensures the root path returns the report page.
func TestNewHandlerServesHTML(t *testing.T) {
	handler, err := NewHandler(Config{Source: staticSource(sampleItems()), Threshold: 0.8})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := get(t, handler, http.MethodGet, "/")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "Redaction Report") || !strings.Contains(body, "v1") {
		t.Fatalf("unexpected body:\n%s", body)
	}
	if got := get(t, handler, http.MethodGet, "/nope").Code; got != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", got)
	}
}

// TestNewHandlerServesExport ensures the export re-imports cleanly.
func TestNewHandlerServesExport(t *testing.T) {
	items := sampleItems()
	handler, err := NewHandler(Config{Source: staticSource(items)})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := get(t, handler, http.MethodGet, "/export.jsonl")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	report, err := dataset.Decode(resp.Body, nil)
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(report.Items) != 1 || report.Items[0].ID != items[0].ID {
		t.Fatalf("unexpected exported items %+v", report.Items)
	}
}

// TestNewHandlerServesMetrics ensures the Prometheus endpoint is mounted.
func TestNewHandlerServesMetrics(t *testing.T) {
	m := metrics.New()
	m.ObserveExactMatch()
	handler, err := NewHandler(Config{Source: staticSource(nil), Metrics: m})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := get(t, handler, http.MethodGet, "/metrics")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "redactbench_") {
		t.Fatalf("expected redactbench metrics, got:\n%s", resp.Body.String())
	}
}

// TestMetricsPublishStoredScores verifies F1 gauges reflect the stored answers.
func TestMetricsPublishStoredScores(t *testing.T) {
	store := record.NewStore()
	itemID, _ := store.Current()
	store.SetOriginalText(itemID, "Alice lives in Minnesota.")
	variant, _ := store.AddRedactedVariant(itemID, "Alice lives in [STATE].", "v1")
	keep, _ := store.AddQA(itemID, "Who?", "Alice", false)
	hide, _ := store.AddQA(itemID, "Where?", "Minnesota", true)
	store.RecordAnswer(itemID, variant.ID, keep.ID, "Alice")
	store.RecordScore(itemID, variant.ID, keep.ID, 1)
	store.RecordAnswer(itemID, variant.ID, hide.ID, "Minnesota")
	store.RecordScore(itemID, variant.ID, hide.ID, 0.9)

	handler, err := NewHandler(Config{Source: staticSource(store.Items()), Threshold: 0.8, Metrics: metrics.New()})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	body := get(t, handler, http.MethodGet, "/metrics").Body.String()
	want := `redactbench_text_f1{item="` + itemID + `",text="` + variant.ID + `"} 0.666666`
	if !strings.Contains(body, want) {
		t.Fatalf("expected %q in metrics:\n%s", want, body)
	}
}

// TestNewHandlerRejectsWrites verifies non-GET methods are refused.
func TestNewHandlerRejectsWrites(t *testing.T) {
	handler, err := NewHandler(Config{Source: staticSource(nil)})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := get(t, handler, http.MethodPost, "/export.jsonl")
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

// TestNewHandlerSourceError verifies load failures surface as 500.
func TestNewHandlerSourceError(t *testing.T) {
	failing := func(context.Context) ([]record.Item, error) { return nil, errors.New("disk gone") }
	handler, err := NewHandler(Config{Source: failing})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	if got := get(t, handler, http.MethodGet, "/").Code; got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
}

// TestNewHandlerRequiresSource verifies construction fails without a source.
func TestNewHandlerRequiresSource(t *testing.T) {
	if _, err := NewHandler(Config{}); err == nil {
		t.Fatalf("expected error")
	}
}
