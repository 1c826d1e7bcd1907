package cli

import (
	"context"
	"fmt"
	"io"

	"redactbench/internal/reportserver"
)

// serveReport is a test seam for running the report server.
var serveReport = reportserver.Serve

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		addr := fs.String("addr", "127.0.0.1:5000", "Address to listen on")
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		if *addr == "" {
			fmt.Fprintln(stderr, "Missing --addr")
			return ExitUsage
		}
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			ctx, stop := interruptContext(ctx)
			defer stop()
			cfg := reportserver.Config{
				Addr:      *addr,
				Source:    s.backend.Load,
				Threshold: s.cfg.Scoring.Threshold,
				Metrics:   s.metrics,
				Logger:    s.log,
			}
			fmt.Fprintf(stdout, "Serving report at http://%s\n", cfg.Addr)
			if err := serveReport(ctx, cfg); err != nil {
				fmt.Fprintf(stderr, "Server error: %v\n", err)
				return ExitError
			}
			return ExitOK
		})
	}
}
