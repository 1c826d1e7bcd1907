package runner

import (
	"fmt"
	"io"
	"sync"
)

// PlainObserver prints one line per finished probe and a closing score line.
type PlainObserver struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPlainObserver writes progress to out.
func NewPlainObserver(out io.Writer) *PlainObserver {
	return &PlainObserver{out: out}
}

// BatchStarted prints which text is being probed.
func (p *PlainObserver) BatchStarted(itemID, textID, label string, probes int) {
	name := textID
	if label != "" {
		name = fmt.Sprintf("%s (%s)", label, textID)
	}
	p.printf("Probing %s with %d question(s)\n", name, probes)
}

// ProbeUpdated prints finished probes. Intermediate stages are skipped.
func (p *PlainObserver) ProbeUpdated(event ProbeEvent) {
	if !event.Stage.Done() {
		return
	}
	kind := "keep"
	if event.Redact {
		kind = "redact"
	}
	prefix := fmt.Sprintf("Q%d [%s]", event.QAIndex+1, kind)
	switch event.Stage {
	case StageCorrect, StageIncorrect:
		verdict := string(event.Stage)
		if event.Leaked() {
			verdict = "leaked"
		}
		p.printf("%s %q scored %.2f %s\n", prefix, event.Answer, event.Score, verdict)
	case StagePending:
		p.printf("%s %q stored, score pending: %s\n", prefix, event.Answer, event.Err)
	case StageFailed:
		p.printf("%s failed: %s\n", prefix, event.Err)
	case StageDropped:
		p.printf("%s dropped, the question or text changed\n", prefix)
	}
}

// BatchFinished prints the batch score.
func (p *PlainObserver) BatchFinished(batch Batch) {
	counts := batch.Counts()
	p.printf("Score %.2f (precision %.2f, recall %.2f) scored=%d pending=%d failed=%d dropped=%d\n",
		batch.Result.F1, batch.Result.Precision, batch.Result.Recall,
		counts[StatusScored], counts[StatusPending], counts[StatusFailed], counts[StatusDropped])
}

func (p *PlainObserver) printf(format string, args ...any) {
	if p.out == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}
