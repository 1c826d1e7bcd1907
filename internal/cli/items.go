package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"redactbench/internal/score"
)

func runItems(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		return withSession(*common.config, stderr, func(_ context.Context, s *session) int {
			current, _ := s.store.Current()
			for i, item := range s.store.Items() {
				marker := " "
				if item.ID == current {
					marker = "*"
				}
				fmt.Fprintf(stdout, "%s %3d  %s  variants=%d qa=%d  %s\n",
					marker, i+1, item.ID, len(item.Texts)-1, len(item.QA), snippet(item.Original().Text, 60))
			}
			return ExitOK
		})
	}
}

func runShow(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		return withSession(*common.config, stderr, func(_ context.Context, s *session) int {
			item, position, err := resolveItem(s.store, *common.item)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			threshold := s.cfg.Scoring.Threshold
			fmt.Fprintf(stdout, "Item %d  %s\n", position, item.ID)
			if item.Policy != "" {
				fmt.Fprintf(stdout, "Policy: %s\n", item.Policy)
			}
			for i, text := range item.Texts {
				fmt.Fprintf(stdout, "\n[%d] %s  %s\n", i, textName(text, i), text.ID)
				fmt.Fprintf(stdout, "%s\n", indent(text.Text))
			}
			if len(item.QA) == 0 {
				fmt.Fprintln(stdout, "\nNo questions.")
				return ExitOK
			}
			fmt.Fprintln(stdout, "\nQuestions:")
			for i, qa := range item.QA {
				kind := "keep"
				if qa.Redact {
					kind = "redact"
				}
				fmt.Fprintf(stdout, "  %d. [%s] %s -> %s  (%s)\n", i+1, kind, qa.Q, qa.A, qa.ID)
				for ti, text := range item.Texts {
					rec, ok := item.Answer(text.ID, qa.ID)
					if !ok {
						continue
					}
					mark := "?"
					detail := "pending"
					if rec.Scored() {
						detail = fmt.Sprintf("%.2f", *rec.Score)
						if score.Correct(*rec.Score, threshold) {
							mark = "✓"
						} else {
							mark = "✗"
						}
					}
					fmt.Fprintf(stdout, "     %s %-12s %q (%s)\n", mark, textName(text, ti)+":", rec.Value, detail)
				}
			}
			return ExitOK
		})
	}
}

func indent(text string) string {
	if text == "" {
		return "    (empty)"
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}

func runItemAdd(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		body := addBodyFlags(fs)
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		text, _, err := body.read(fs)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			item := s.store.AddItem(text)
			s.store.Select(item.ID)
			if code := saveOrFail(ctx, s, stderr); code != ExitOK {
				return code
			}
			fmt.Fprintf(stdout, "Added item %d %s\n", s.store.Len(), item.ID)
			return ExitOK
		})
	}
}

func runItemDelete(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		all := fs.Bool("all", false, "Delete every item")
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			if *all {
				s.store.DeleteAllItems()
				if code := saveOrFail(ctx, s, stderr); code != ExitOK {
					return code
				}
				fmt.Fprintln(stdout, "Deleted all items")
				return ExitOK
			}
			item, _, err := resolveItem(s.store, *common.item)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			s.store.DeleteItem(item.ID)
			if code := saveOrFail(ctx, s, stderr); code != ExitOK {
				return code
			}
			fmt.Fprintf(stdout, "Deleted item %s\n", item.ID)
			return ExitOK
		})
	}
}

func runOriginalSet(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		body := addBodyFlags(fs)
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		text, given, err := body.read(fs)
		if err != nil || !given {
			if err == nil {
				err = fmt.Errorf("--body or --file is required")
			}
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			item, _, err := resolveItem(s.store, *common.item)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			s.store.SetOriginalText(item.ID, text)
			if code := saveOrFail(ctx, s, stderr); code != ExitOK {
				return code
			}
			fmt.Fprintf(stdout, "Updated original of item %s\n", item.ID)
			if answers := len(item.Answers[item.Original().ID]); answers > 0 {
				fmt.Fprintf(stderr, "Note: %d answer(s) against the original were kept and may be stale.\n", answers)
			}
			return ExitOK
		})
	}
}

func runPolicySet(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		if code, ok := parseArgs(cmd, fs, args, 0, -1, stdout, stderr); !ok {
			return code
		}
		policy := strings.Join(fs.Args(), " ")
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			item, _, err := resolveItem(s.store, *common.item)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			s.store.SetPolicy(item.ID, policy)
			if code := saveOrFail(ctx, s, stderr); code != ExitOK {
				return code
			}
			fmt.Fprintf(stdout, "Updated policy of item %s\n", item.ID)
			return ExitOK
		})
	}
}
