package cli

import (
	"context"
	"fmt"
	"io"

	"redactbench/internal/record"
	"redactbench/internal/report"
)

// leakQuerier is implemented by backends that can aggregate stored scores.
type leakQuerier interface {
	LeakRate(ctx context.Context, itemID string, threshold float64) (map[int]float64, error)
}

func runScore(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		all := fs.Bool("all", false, "Score every item")
		threshold := fs.Float64("threshold", 0, "Similarity at or above which an answer counts as correct (default: config)")
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			value := s.cfg.Scoring.Threshold
			if flagWasSet(fs, "threshold") {
				value = *threshold
			}
			var reports []report.ItemReport
			if *all {
				reports = report.Build(s.store.Items(), value)
			} else {
				item, position, err := resolveItem(s.store, *common.item)
				if err != nil {
					fmt.Fprintf(stderr, "%v\n", err)
					return ExitError
				}
				reports = report.Build([]record.Item{item}, value)
				reports[0].Position = position
			}
			noColor := !colorEnabled(stdout)
			leaks, _ := s.backend.(leakQuerier)
			for i, rep := range reports {
				if i > 0 {
					fmt.Fprintln(stdout)
				}
				if err := report.WriteTable(stdout, rep, noColor); err != nil {
					fmt.Fprintf(stderr, "%v\n", err)
					return ExitError
				}
				if leaks == nil {
					continue
				}
				rates, err := leaks.LeakRate(ctx, rep.Item.ID, value)
				if err != nil {
					s.log.Warn("query leak rate", "item", rep.Item.ID, "error", err)
					continue
				}
				if err := report.WriteLeakRates(stdout, rep, rates); err != nil {
					fmt.Fprintf(stderr, "%v\n", err)
					return ExitError
				}
			}
			return ExitOK
		})
	}
}
