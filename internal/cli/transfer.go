package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"redactbench/internal/dataset"
	"redactbench/internal/record"
)

func runImport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		if code, ok := parseArgs(cmd, fs, args, 1, 1, stdout, stderr); !ok {
			return code
		}
		path := fs.Arg(0)
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			var in io.Reader = stdin
			if path != "-" {
				file, err := os.Open(path)
				if err != nil {
					fmt.Fprintf(stderr, "Import failed: %v\n", err)
					return ExitError
				}
				defer file.Close()
				in = file
			}
			existing := s.store.Items()
			ids := make([]string, 0, len(existing))
			for _, item := range existing {
				ids = append(ids, item.ID)
			}
			if pristine(existing) {
				ids = nil
			}
			result, err := dataset.Decode(in, ids)
			if err != nil {
				fmt.Fprintf(stderr, "Import failed, nothing was added:\n%v\n", err)
				return ExitError
			}
			added := len(result.Items)
			if pristine(existing) && added > 0 {
				s.store.Replace(result.Items)
			} else {
				added = s.store.Append(result.Items)
			}
			if code := saveOrFail(ctx, s, stderr); code != ExitOK {
				return code
			}
			fmt.Fprintf(stdout, "Imported %d item(s)\n", added)
			if result.Repaired > 0 {
				fmt.Fprintf(stdout, "Derived %d missing original id(s)\n", result.Repaired)
			}
			if result.DroppedAnswers > 0 {
				fmt.Fprintf(stdout, "Dropped %d answer(s) referencing unknown texts or questions\n", result.DroppedAnswers)
			}
			return ExitOK
		})
	}
}

// pristine reports whether the collection is only the blank placeholder
// item a new store starts with.
func pristine(items []record.Item) bool {
	if len(items) != 1 {
		return false
	}
	item := items[0]
	return len(item.Texts) == 1 && strings.TrimSpace(item.Texts[0].Text) == "" &&
		len(item.QA) == 0 && item.Policy == "" && len(item.Answers) == 0
}

func runExport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		if code, ok := parseArgs(cmd, fs, args, 0, 1, stdout, stderr); !ok {
			return code
		}
		path := fs.Arg(0)
		return withSession(*common.config, stderr, func(_ context.Context, s *session) int {
			items := s.store.Items()
			if path == "" || path == "-" {
				if err := dataset.Encode(stdout, items); err != nil {
					fmt.Fprintf(stderr, "Export failed: %v\n", err)
					return ExitError
				}
				return ExitOK
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				fmt.Fprintf(stderr, "Export failed: %v\n", err)
				return ExitError
			}
			file, err := os.Create(path)
			if err != nil {
				fmt.Fprintf(stderr, "Export failed: %v\n", err)
				return ExitError
			}
			if err := dataset.Encode(file, items); err != nil {
				_ = file.Close()
				fmt.Fprintf(stderr, "Export failed: %v\n", err)
				return ExitError
			}
			if err := file.Close(); err != nil {
				fmt.Fprintf(stderr, "Export failed: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Exported %d item(s) to %s\n", len(items), path)
			return ExitOK
		})
	}
}
