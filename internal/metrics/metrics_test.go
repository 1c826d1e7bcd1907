package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestObserveOracle verifies success and error calls are counted separately.
func TestObserveOracle(t *testing.T) {
	m := New()
	m.ObserveOracle("answer", 0.2, nil)
	m.ObserveOracle("answer", 0.3, errors.New("boom"))
	m.ObserveOracle("answer", 0.1, nil)
	if got := testutil.ToFloat64(m.OracleRequests.WithLabelValues("answer", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.OracleRequests.WithLabelValues("answer", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
}

// TestNilMetricsIsSafe verifies instrumentation can be disabled with nil.
func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveOracle("answer", 1, nil)
	m.ObserveExactMatch()
	m.ObservePipeline("scored")
	m.SetF1("i", "t", 1)
}

// TestHandlerExposesCollectors verifies the exposition endpoint.
func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveExactMatch()
	m.ObservePipeline("dropped")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	if !strings.Contains(text, "redactbench_equality_exact_matches_total 1") {
		t.Fatalf("expected exact match counter, got:\n%s", text)
	}
	if !strings.Contains(text, `redactbench_answer_pipelines_total{status="dropped"} 1`) {
		t.Fatalf("expected pipeline counter, got:\n%s", text)
	}
}
