package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
)

func runQAAdd(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		question := fs.String("q", "", "Question")
		gold := fs.String("a", "", "Gold answer")
		redact := fs.Bool("redact", false, "The answer must not be recoverable from a variant")
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		if strings.TrimSpace(*question) == "" {
			fmt.Fprintln(stderr, "-q is required")
			return ExitUsage
		}
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			item, _, err := resolveItem(s.store, *common.item)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			entry, _ := s.store.AddQA(item.ID, *question, *gold, *redact)
			if code := saveOrFail(ctx, s, stderr); code != ExitOK {
				return code
			}
			fmt.Fprintf(stdout, "Added question %d %s\n", len(item.QA)+1, entry.ID)
			return ExitOK
		})
	}
}

func runQAEdit(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		qaRef := fs.String("qa", "", "Question id or 1-based position")
		question := fs.String("q", "", "New question")
		gold := fs.String("a", "", "New gold answer")
		redact := fs.Bool("redact", false, "Redact flag")
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		setQ, setA, setRedact := flagWasSet(fs, "q"), flagWasSet(fs, "a"), flagWasSet(fs, "redact")
		if !setQ && !setA && !setRedact {
			fmt.Fprintln(stderr, "nothing to change: pass -q, -a or --redact")
			return ExitUsage
		}
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			item, _, err := resolveItem(s.store, *common.item)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			entry, index, err := resolveQA(item, *qaRef)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			if setQ {
				s.store.SetQuestion(item.ID, entry.ID, *question)
			}
			if setA {
				s.store.SetGoldAnswer(item.ID, entry.ID, *gold)
			}
			if setRedact {
				s.store.SetRedactFlag(item.ID, entry.ID, *redact)
			}
			if code := saveOrFail(ctx, s, stderr); code != ExitOK {
				return code
			}
			fmt.Fprintf(stdout, "Updated question %d\n", index+1)
			if setQ || setA {
				fmt.Fprintln(stdout, "Cleared its answers on every text")
			}
			return ExitOK
		})
	}
}

func runQADelete(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		qaRef := fs.String("qa", "", "Question id or 1-based position")
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			item, _, err := resolveItem(s.store, *common.item)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			entry, index, err := resolveQA(item, *qaRef)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			s.store.DeleteQA(item.ID, entry.ID)
			if code := saveOrFail(ctx, s, stderr); code != ExitOK {
				return code
			}
			fmt.Fprintf(stdout, "Deleted question %d %s\n", index+1, entry.ID)
			return ExitOK
		})
	}
}
