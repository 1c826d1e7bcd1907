package runner

import "time"

// Stage is the step a probe pipeline has reached.
type Stage string

const (
	StageQueued    Stage = "queued"
	StageAnswering Stage = "answering"
	StageJudging   Stage = "judging"
	// StageCorrect and StageIncorrect compare the score with the threshold.
	StageCorrect   Stage = "correct"
	StageIncorrect Stage = "incorrect"
	// StagePending means the answer was stored but equality failed.
	StagePending Stage = "pending"
	StageFailed  Stage = "failed"
	// StageDropped means the pair changed while the pipeline was in flight.
	StageDropped Stage = "dropped"
)

// Done reports whether no further events follow for the probe.
func (s Stage) Done() bool {
	switch s {
	case StageCorrect, StageIncorrect, StagePending, StageFailed, StageDropped:
		return true
	}
	return false
}

// ProbeEvent reports a stage change of one (text, qa) pipeline.
type ProbeEvent struct {
	ItemID   string
	TextID   string
	QAID     string
	QAIndex  int
	Question string
	Gold     string
	Redact   bool
	Stage    Stage
	Answer   string
	Score    float64
	Elapsed  time.Duration
	Err      string
	At       time.Time
}

// Leaked reports whether a scored redact probe was answered correctly.
func (e ProbeEvent) Leaked() bool {
	return e.Redact && e.Stage == StageCorrect
}

// Observer follows answer batches, for progress UIs and logs. Calls may
// arrive from several goroutines at once.
type Observer interface {
	BatchStarted(itemID, textID, label string, probes int)
	ProbeUpdated(event ProbeEvent)
	BatchFinished(batch Batch)
}
