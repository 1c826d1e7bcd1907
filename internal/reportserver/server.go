// Package reportserver serves the HTML score report, a JSON Lines export and
// Prometheus metrics over HTTP.
package reportserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"redactbench/internal/logger"
	"redactbench/internal/metrics"
	"redactbench/internal/record"
)

// Source returns the current item collection. It is called once per request.
type Source func(ctx context.Context) ([]record.Item, error)

// Config captures the settings for serving the report.
type Config struct {
	Addr      string
	Source    Source
	Threshold float64
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

// Serve listens on cfg.Addr until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func Serve(ctx context.Context, cfg Config) error {
	if cfg.Addr == "" {
		return errors.New("reportserver: addr is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		cfg.Logger.Info("report server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		drain, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return server.Shutdown(drain)
	})
	return group.Wait()
}
