package cli

import (
	"context"
	"fmt"
	"io"
)

func runGenerate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		if code, ok := parseArgs(cmd, fs, args, 1, 1, stdout, stderr); !ok {
			return code
		}
		kind := fs.Arg(0)
		switch kind {
		case "item", "qa", "variant":
		default:
			fmt.Fprintf(stderr, "unknown generate target %q (expected item, qa or variant)\n", kind)
			printCommandUsage(cmd, nil, stderr)
			return ExitUsage
		}
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			ctx, stop := interruptContext(ctx)
			defer stop()
			r, err := s.runner(nil)
			if err != nil {
				fmt.Fprintf(stderr, "Model setup failed: %v\n", err)
				return ExitError
			}
			switch kind {
			case "item":
				item, err := r.GenerateItem(ctx)
				if err != nil {
					fmt.Fprintf(stderr, "Generation failed: %v\n", err)
					return ExitError
				}
				if code := saveOrFail(ctx, s, stderr); code != ExitOK {
					return code
				}
				fmt.Fprintf(stdout, "Generated item %d %s\n", s.store.Len(), item.ID)
			case "qa":
				item, _, err := resolveItem(s.store, *common.item)
				if err != nil {
					fmt.Fprintf(stderr, "%v\n", err)
					return ExitError
				}
				added, err := r.GenerateQA(ctx, item.ID)
				if err != nil {
					fmt.Fprintf(stderr, "Generation failed: %v\n", err)
					return ExitError
				}
				if code := saveOrFail(ctx, s, stderr); code != ExitOK {
					return code
				}
				for i, entry := range added {
					fmt.Fprintf(stdout, "  %d. %s -> %s\n", len(item.QA)+i+1, entry.Q, entry.A)
				}
				fmt.Fprintf(stdout, "Generated %d question(s); mark the ones to hide with qa-edit --redact\n", len(added))
			case "variant":
				item, _, err := resolveItem(s.store, *common.item)
				if err != nil {
					fmt.Fprintf(stderr, "%v\n", err)
					return ExitError
				}
				text, err := r.GenerateVariant(ctx, item.ID)
				if err != nil {
					fmt.Fprintf(stderr, "Generation failed: %v\n", err)
					return ExitError
				}
				if code := saveOrFail(ctx, s, stderr); code != ExitOK {
					return code
				}
				fmt.Fprintf(stdout, "Generated variant %d %s\n", len(item.Texts), text.ID)
			}
			return ExitOK
		})
	}
}
