package live

import (
	"fmt"
	"time"

	"redactbench/internal/runner"
	"redactbench/internal/score"
)

// probeRow is what the table knows about one probe.
type probeRow struct {
	question string
	gold     string
	redact   bool
	stage    runner.Stage
	answer   string
	score    float64
	scored   bool
	err      string
	began    time.Time
	ended    time.Time
}

func (r probeRow) elapsed(now time.Time) time.Duration {
	switch {
	case r.began.IsZero():
		return 0
	case r.ended.IsZero():
		return now.Sub(r.began)
	}
	return r.ended.Sub(r.began)
}

// Board is the display state of one answer batch.
type Board struct {
	ItemID string
	TextID string
	Label  string
	Began  time.Time

	rows      []probeRow
	confusion score.Confusion
	pending   int
	failed    int
	dropped   int
	note      string
	final     string
}

// NewBoard starts an empty board for a batch of probes.
func NewBoard(itemID, textID, label string, probes int, began time.Time) Board {
	return Board{
		ItemID: itemID,
		TextID: textID,
		Label:  label,
		Began:  began,
		rows:   make([]probeRow, probes),
	}
}

// Apply folds one probe event into the board. Events for a finished probe
// are ignored unless they finish it again.
func (b Board) Apply(event runner.ProbeEvent) Board {
	if event.QAIndex < 0 {
		return b
	}
	if event.QAIndex >= len(b.rows) {
		grown := make([]probeRow, event.QAIndex+1)
		copy(grown, b.rows)
		b.rows = grown
	} else {
		b.rows = append([]probeRow(nil), b.rows...)
	}
	row := b.rows[event.QAIndex]
	row.question = event.Question
	row.gold = event.Gold
	row.redact = event.Redact
	if row.stage.Done() && !event.Stage.Done() {
		return b
	}
	row.stage = event.Stage
	if event.Stage == runner.StageAnswering && row.began.IsZero() {
		row.began = event.At
	}
	if event.Stage.Done() {
		row.ended = event.At
		if row.began.IsZero() {
			row.began = event.At.Add(-event.Elapsed)
		}
		row.answer = event.Answer
		row.err = event.Err
		row.scored = event.Stage == runner.StageCorrect || event.Stage == runner.StageIncorrect
		row.score = event.Score
	}
	b.rows[event.QAIndex] = row
	b.retally()
	if note := noteFor(event); note != "" {
		b.note = note
	}
	return b
}

// Finish records the batch score.
func (b Board) Finish(batch runner.Batch) Board {
	r := batch.Result
	b.final = fmt.Sprintf("Score %.2f (precision %.2f, recall %.2f)", r.F1, r.Precision, r.Recall)
	return b
}

// Running counts probes that have not finished yet.
func (b Board) Running() int {
	n := 0
	for _, row := range b.rows {
		if !row.stage.Done() {
			n++
		}
	}
	return n
}

// Confusion returns the matrix over probes scored so far in this batch.
func (b Board) Confusion() score.Confusion {
	return b.confusion
}

func (b *Board) retally() {
	b.confusion = score.Confusion{}
	b.pending, b.failed, b.dropped = 0, 0, 0
	for _, row := range b.rows {
		switch row.stage {
		case runner.StageCorrect:
			b.confusion.Add(score.Classify(row.redact, true))
		case runner.StageIncorrect:
			b.confusion.Add(score.Classify(row.redact, false))
		case runner.StagePending:
			b.pending++
		case runner.StageFailed:
			b.failed++
		case runner.StageDropped:
			b.dropped++
		}
	}
}

func noteFor(event runner.ProbeEvent) string {
	n := event.QAIndex + 1
	switch event.Stage {
	case runner.StageCorrect, runner.StageIncorrect:
		if event.Leaked() {
			return fmt.Sprintf("Q%d leaked %q (%.2f)", n, event.Answer, event.Score)
		}
		return fmt.Sprintf("Q%d scored %.2f", n, event.Score)
	case runner.StagePending:
		return fmt.Sprintf("Q%d answer kept, score pending: %s", n, event.Err)
	case runner.StageFailed:
		return fmt.Sprintf("Q%d failed: %s", n, event.Err)
	case runner.StageDropped:
		return fmt.Sprintf("Q%d dropped, target changed", n)
	}
	return ""
}
