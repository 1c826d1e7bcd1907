// Package metrics exposes Prometheus instruments for oracle traffic and
// pipeline outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// OracleRequests counts model calls.
	// Labels: call (answer|equality|generate), status (success|error)
	OracleRequests *prometheus.CounterVec

	// OracleDuration measures model call latency in seconds.
	// Labels: call
	OracleDuration *prometheus.HistogramVec

	// ExactMatches counts equality checks settled without a model call.
	ExactMatches prometheus.Counter

	// Pipelines counts finished answer pipelines.
	// Labels: status (scored|pending|failed|dropped)
	Pipelines *prometheus.CounterVec

	// VariantF1 holds the last computed F1 per text.
	// Labels: item, text
	VariantF1 *prometheus.GaugeVec
}

// New registers a fresh set of collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		OracleRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "redactbench",
			Name:      "oracle_requests_total",
			Help:      "Language model requests by call kind and status.",
		}, []string{"call", "status"}),
		OracleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "redactbench",
			Name:      "oracle_request_duration_seconds",
			Help:      "Language model request latency.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"call"}),
		ExactMatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "redactbench",
			Name:      "equality_exact_matches_total",
			Help:      "Equality checks resolved by the exact-match fast path.",
		}),
		Pipelines: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "redactbench",
			Name:      "answer_pipelines_total",
			Help:      "Finished answer pipelines by outcome.",
		}, []string{"status"}),
		VariantF1: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "redactbench",
			Name:      "text_f1",
			Help:      "Last computed F1 score per text.",
		}, []string{"item", "text"}),
	}
}

// ObserveOracle records one model call.
func (m *Metrics) ObserveOracle(call string, seconds float64, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.OracleRequests.WithLabelValues(call, status).Inc()
	m.OracleDuration.WithLabelValues(call).Observe(seconds)
}

// ObserveExactMatch records an equality check settled locally.
func (m *Metrics) ObserveExactMatch() {
	if m == nil {
		return
	}
	m.ExactMatches.Inc()
}

// ObservePipeline records a finished pipeline.
func (m *Metrics) ObservePipeline(status string) {
	if m == nil {
		return
	}
	m.Pipelines.WithLabelValues(status).Inc()
}

// SetF1 publishes a text score.
func (m *Metrics) SetF1(itemID, textID string, f1 float64) {
	if m == nil {
		return
	}
	m.VariantF1.WithLabelValues(itemID, textID).Set(f1)
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
