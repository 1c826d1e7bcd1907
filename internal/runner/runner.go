// Package runner drives oracle pipelines against the record store: answer a
// probe, record the answer, judge it, record the score.
package runner

import (
	"context"
	"errors"
	"time"

	"redactbench/internal/logger"
	"redactbench/internal/metrics"
	"redactbench/internal/oracle"
	"redactbench/internal/record"
	"redactbench/internal/score"
)

var (
	// ErrUnknownTarget is returned when an item, text or qa id does not resolve.
	ErrUnknownTarget = errors.New("unknown item, text or question")
	// ErrEmptyOriginal is returned when generation needs an original text and it is blank.
	ErrEmptyOriginal = errors.New("original text is empty")
	// ErrNoGenerator is returned when generation is requested without a generator.
	ErrNoGenerator = errors.New("no generator configured")
)

// Status is the terminal state of one pipeline.
type Status string

const (
	// StatusScored means answer and score were both written.
	StatusScored Status = "scored"
	// StatusPending means the answer was written but the equality check failed.
	StatusPending Status = "pending"
	// StatusFailed means the answer call failed and nothing was written.
	StatusFailed Status = "failed"
	// StatusDropped means the target changed while the pipeline was in flight.
	StatusDropped Status = "dropped"
)

// Deps bundles the collaborators of a Runner.
type Deps struct {
	Store     *record.Store
	Answerer  oracle.Answerer
	Judge     oracle.Judge
	Generator oracle.Generator
	// Workers bounds concurrent pipelines in a batch. Values below 1 mean 1.
	Workers int
	// Threshold decides correct/incorrect for events and batch scores.
	Threshold float64
	// CallTimeout bounds each oracle call. Zero disables the bound.
	CallTimeout time.Duration
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
	Observer    Observer
}

// Runner executes oracle pipelines.
type Runner struct {
	store     *record.Store
	answerer  oracle.Answerer
	judge     oracle.Judge
	generator oracle.Generator
	workers   int
	threshold float64
	timeout   time.Duration
	log       *logger.Logger
	metrics   *metrics.Metrics
	observer  Observer
}

// New builds a runner. The judge is wrapped with the exact-match fast path.
func New(deps Deps) *Runner {
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	var judge oracle.Judge
	if deps.Judge != nil {
		judge = oracle.WithExactMatch(deps.Judge, deps.Metrics)
	}
	return &Runner{
		store:     deps.Store,
		answerer:  deps.Answerer,
		judge:     judge,
		generator: deps.Generator,
		workers:   workers,
		threshold: deps.Threshold,
		timeout:   deps.CallTimeout,
		log:       log,
		metrics:   deps.Metrics,
		observer:  deps.Observer,
	}
}

// Outcome is the result of one pipeline.
type Outcome struct {
	QAID     string
	QAIndex  int
	Question string
	Redact   bool
	Answer   string
	Score    *float64
	Status   Status
	Err      error
}

// Batch is the result of answering every probe of an item against one text.
type Batch struct {
	ItemID   string
	TextID   string
	Outcomes []Outcome
	Result   score.Result
}

// Counts tallies outcomes by status.
func (b Batch) Counts() map[Status]int {
	counts := map[Status]int{}
	for _, outcome := range b.Outcomes {
		counts[outcome.Status]++
	}
	return counts
}

func (r *Runner) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Runner) emit(event ProbeEvent) {
	if r.observer == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}
	r.observer.ProbeUpdated(event)
}
