package reportserver

import (
	"errors"
	"net/http"

	"redactbench/internal/dataset"
	"redactbench/internal/record"
	"redactbench/internal/report"
)

type handler struct {
	cfg Config
}

// NewHandler routes GET / to the HTML report, GET /export.jsonl to the
// current items as JSON Lines and, when metrics are configured, GET /metrics
// to the Prometheus exposition.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Source == nil {
		return nil, errors.New("reportserver: source is required")
	}
	h := handler{cfg: cfg}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.page)
	mux.HandleFunc("GET /export.jsonl", h.export)
	if cfg.Metrics != nil {
		exposition := cfg.Metrics.Handler()
		mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
			// Refresh from storage so scores written by other processes show up.
			if items, ok := h.items(w, r, false); ok {
				h.publish(report.Build(items, cfg.Threshold))
			}
			exposition.ServeHTTP(w, r)
		})
	}
	return mux, nil
}

// items loads the collection. With fail set, a load error is answered with
// a 500; otherwise it is only logged.
func (h handler) items(w http.ResponseWriter, r *http.Request, fail bool) ([]record.Item, bool) {
	items, err := h.cfg.Source(r.Context())
	if err == nil {
		return items, true
	}
	h.cfg.Logger.Warn("load items", "path", r.URL.Path, "error", err)
	if fail {
		http.Error(w, "failed to load items", http.StatusInternalServerError)
	}
	return nil, false
}

func (h handler) page(w http.ResponseWriter, r *http.Request) {
	items, ok := h.items(w, r, true)
	if !ok {
		return
	}
	reports := report.Build(items, h.cfg.Threshold)
	h.publish(reports)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.Page(reports).Render(r.Context(), w); err != nil {
		h.cfg.Logger.Error("render report", "error", err)
	}
}

func (h handler) export(w http.ResponseWriter, r *http.Request) {
	items, ok := h.items(w, r, true)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", `attachment; filename="export.jsonl"`)
	if err := dataset.Encode(w, items); err != nil {
		h.cfg.Logger.Error("write export", "error", err)
	}
}

// publish sets the per-text F1 gauges.
func (h handler) publish(reports []report.ItemReport) {
	if h.cfg.Metrics == nil {
		return
	}
	for _, rep := range reports {
		for _, result := range rep.Results {
			h.cfg.Metrics.SetF1(rep.Item.ID, result.TextID, result.F1)
		}
	}
}
