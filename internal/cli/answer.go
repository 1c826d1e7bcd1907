package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"redactbench/internal/runner"
	"redactbench/internal/ui/live"
)

// startLiveUI is a test seam for the Bubble Tea controller.
var startLiveUI = func(stdout io.Writer, onQuit func()) liveController {
	return live.Start(stdout, live.Options{NoColor: !colorEnabled(stdout), OnQuit: onQuit})
}

type liveController interface {
	runner.Observer
	Close()
	Wait()
}

func runAnswer(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs, common := newFlagSet(cmd)
		textRef := fs.String("text", "", "Text reference: original, 0, 1-based variant position or id (default: first variant)")
		qaRef := fs.String("qa", "", "Answer a single question (id or 1-based position)")
		uiMode := fs.String("ui", "auto", "Progress display: auto, live or plain")
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		useLive, note, err := chooseProgress(*uiMode, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if note != "" {
			fmt.Fprintln(stderr, note)
		}
		return withSession(*common.config, stderr, func(ctx context.Context, s *session) int {
			ctx, stop := interruptContext(ctx)
			defer stop()
			item, _, err := resolveItem(s.store, *common.item)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			text, index, err := resolveText(item, *textRef)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}

			if *qaRef != "" {
				entry, _, err := resolveQA(item, *qaRef)
				if err != nil {
					fmt.Fprintf(stderr, "%v\n", err)
					return ExitError
				}
				r, err := s.runner(nil)
				if err != nil {
					fmt.Fprintf(stderr, "Model setup failed: %v\n", err)
					return ExitError
				}
				outcome, err := r.AnswerOne(ctx, item.ID, text.ID, entry.ID)
				if err != nil {
					fmt.Fprintf(stderr, "%v\n", err)
					return ExitError
				}
				if code := saveOrFail(ctx, s, stderr); code != ExitOK {
					return code
				}
				printOutcome(stdout, outcome)
				if outcome.Status == runner.StatusFailed {
					return ExitError
				}
				return ExitOK
			}

			var (
				observer   runner.Observer
				controller liveController
			)
			if useLive {
				// The terminal is raw while the UI runs, so ctrl+c arrives as a key.
				var cancel context.CancelFunc
				ctx, cancel = context.WithCancel(ctx)
				defer cancel()
				controller = startLiveUI(stdout, cancel)
				observer = controller
			} else {
				observer = runner.NewPlainObserver(stdout)
			}
			r, err := s.runner(observer)
			if err != nil {
				if controller != nil {
					controller.Close()
					controller.Wait()
				}
				fmt.Fprintf(stderr, "Model setup failed: %v\n", err)
				return ExitError
			}
			batch, err := r.AnswerAll(ctx, item.ID, text.ID)
			if controller != nil {
				controller.Close()
				controller.Wait()
			}
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			if code := saveOrFail(ctx, s, stderr); code != ExitOK {
				return code
			}
			counts := batch.Counts()
			if controller != nil {
				fmt.Fprintf(stdout, "%s: score %.2f (precision %.2f, recall %.2f)\n",
					textName(text, index), batch.Result.F1, batch.Result.Precision, batch.Result.Recall)
			}
			if counts[runner.StatusFailed] > 0 || counts[runner.StatusPending] > 0 {
				fmt.Fprintf(stderr, "%d question(s) failed and %d left pending; rerun answer to retry them\n",
					counts[runner.StatusFailed], counts[runner.StatusPending])
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return ExitError
			}
			return ExitOK
		})
	}
}

func printOutcome(w io.Writer, outcome runner.Outcome) {
	switch outcome.Status {
	case runner.StatusScored:
		fmt.Fprintf(w, "Q%d %q scored %.2f\n", outcome.QAIndex+1, outcome.Answer, *outcome.Score)
	case runner.StatusPending:
		fmt.Fprintf(w, "Q%d %q stored, score pending: %v\n", outcome.QAIndex+1, outcome.Answer, outcome.Err)
	case runner.StatusDropped:
		fmt.Fprintf(w, "Q%d dropped, question changed while answering\n", outcome.QAIndex+1)
	default:
		fmt.Fprintf(w, "Q%d failed: %v\n", outcome.QAIndex+1, outcome.Err)
	}
}
