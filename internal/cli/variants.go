package cli

import (
	"context"
	"fmt"
	"io"
)

func runVariantAdd(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		body := addBodyFlags(fs)
		label := fs.String("label", "", "Variant label")
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
			added, _ := s.store.AddRedactedVariant(item.ID, text, *label)
			if code := saveOrFail(ctx, s, stderr); code != ExitOK {
				return code
			}
			fmt.Fprintf(stdout, "Added variant %d %s\n", len(item.Texts), added.ID)
			return ExitOK
		})
	}
}

func runVariantSet(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		textRef := fs.String("text", "", "Text reference: original, 0, 1-based variant position or id")
		body := addBodyFlags(fs)
		label := fs.String("label", "", "Variant label")
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		text, bodyGiven, err := body.read(fs)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		labelGiven := flagWasSet(fs, "label")
		if !bodyGiven && !labelGiven {
			fmt.Fprintln(stderr, "nothing to change: pass --body, --file or --label")
			return ExitUsage
		}
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			item, _, err := resolveItem(s.store, *common.item)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			target, index, err := resolveText(item, *textRef)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			if bodyGiven {
				s.store.SetVariantText(item.ID, target.ID, text)
			}
			if labelGiven {
				s.store.SetVariantLabel(item.ID, target.ID, *label)
			}
			if code := saveOrFail(ctx, s, stderr); code != ExitOK {
				return code
			}
			fmt.Fprintf(stdout, "Updated %s\n", textName(target, index))
			return ExitOK
		})
	}
}

func runVariantDelete(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		textRef := fs.String("text", "", "Text reference: original, 0, 1-based variant position or id")
		all := fs.Bool("all", false, "Delete every variant, keeping the original")
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			item, _, err := resolveItem(s.store, *common.item)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			if *all {
				s.store.DeleteAllVariants(item.ID)
				if code := saveOrFail(ctx, s, stderr); code != ExitOK {
					return code
				}
				fmt.Fprintf(stdout, "Deleted %d variant(s)\n", len(item.Texts)-1)
				return ExitOK
			}
			target, index, err := resolveText(item, *textRef)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			s.store.DeleteVariant(item.ID, target.ID)
			if code := saveOrFail(ctx, s, stderr); code != ExitOK {
				return code
			}
			if index == 0 {
				fmt.Fprintln(stdout, "Reset item to a blank original; variants and answers removed")
				return ExitOK
			}
			fmt.Fprintf(stdout, "Deleted %s\n", textName(target, index))
			return ExitOK
		})
	}
}
