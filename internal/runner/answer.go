package runner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"redactbench/internal/record"
	"redactbench/internal/score"
)

// AnswerOne runs the pipeline for a single (text, qa) pair.
func (r *Runner) AnswerOne(ctx context.Context, itemID, textID, qaID string) (Outcome, error) {
	probe, ok := r.store.Probe(itemID, textID, qaID)
	if !ok {
		return Outcome{}, fmt.Errorf("answer %s/%s/%s: %w", itemID, textID, qaID, ErrUnknownTarget)
	}
	r.emit(r.event(probe, StageQueued))
	return r.pipeline(ctx, probe), nil
}

// AnswerAll runs one independent pipeline per probe of the item against a
// single text. A failing pipeline never cancels the others. Outcomes keep qa
// order and the batch score is computed once every pipeline has finished.
func (r *Runner) AnswerAll(ctx context.Context, itemID, textID string) (Batch, error) {
	item, ok := r.store.Item(itemID)
	if !ok {
		return Batch{}, fmt.Errorf("answer all %s: %w", itemID, ErrUnknownTarget)
	}
	textIdx := item.TextIndex(textID)
	if textIdx < 0 {
		return Batch{}, fmt.Errorf("answer all %s/%s: %w", itemID, textID, ErrUnknownTarget)
	}

	probes := make([]record.Probe, 0, len(item.QA))
	for _, qa := range item.QA {
		if probe, found := r.store.Probe(itemID, textID, qa.ID); found {
			probes = append(probes, probe)
		}
	}
	if r.observer != nil {
		r.observer.BatchStarted(itemID, textID, item.Texts[textIdx].Label, len(probes))
	}
	for _, probe := range probes {
		r.emit(r.event(probe, StageQueued))
	}
	r.log.Info("answering all questions", "item_id", itemID, "text_id", textID, "questions", len(probes), "workers", r.workers)

	outcomes := make([]Outcome, len(probes))
	var group errgroup.Group
	group.SetLimit(r.workers)
	for i, probe := range probes {
		group.Go(func() error {
			outcomes[i] = r.pipeline(ctx, probe)
			return nil
		})
	}
	_ = group.Wait()

	batch := Batch{ItemID: itemID, TextID: textID, Outcomes: outcomes}
	if latest, found := r.store.Item(itemID); found {
		batch.Result = score.Evaluate(latest, textID, r.threshold)
		r.metrics.SetF1(itemID, textID, batch.Result.F1)
	}
	if r.observer != nil {
		r.observer.BatchFinished(batch)
	}
	return batch, nil
}

// pipeline answers, records, judges and scores one probe in that order.
func (r *Runner) pipeline(ctx context.Context, probe record.Probe) Outcome {
	start := time.Now()
	outcome := Outcome{QAID: probe.QAID, QAIndex: probe.QAIndex, Question: probe.Question, Redact: probe.Redact}
	log := r.log.With("item_id", probe.ItemID, "text_id", probe.TextID, "qa_id", probe.QAID)
	finish := func(status Status, stage Stage, err error) Outcome {
		outcome.Status = status
		outcome.Err = err
		r.metrics.ObservePipeline(string(status))
		event := r.event(probe, stage)
		event.Answer = outcome.Answer
		if outcome.Score != nil {
			event.Score = *outcome.Score
		}
		if err != nil {
			event.Err = err.Error()
		}
		event.Elapsed = time.Since(start)
		r.emit(event)
		return outcome
	}

	if r.answerer == nil {
		return finish(StatusFailed, StageFailed, fmt.Errorf("no answerer configured"))
	}
	r.emit(r.event(probe, StageAnswering))
	callCtx, cancel := r.callContext(ctx)
	value, err := r.answerer.Answer(callCtx, probe.Context, probe.Question)
	cancel()
	if err != nil {
		log.Warn("answer failed", "error", err)
		return finish(StatusFailed, StageFailed, fmt.Errorf("answer: %w", err))
	}
	outcome.Answer = value

	probe, ok := r.store.RecordProbeAnswer(probe, value)
	if !ok {
		log.Info("answer dropped, target changed in flight")
		return finish(StatusDropped, StageDropped, nil)
	}

	if r.judge == nil {
		return finish(StatusPending, StagePending, fmt.Errorf("no judge configured"))
	}
	r.emit(r.event(probe, StageJudging))
	callCtx, cancel = r.callContext(ctx)
	similarity, err := r.judge.Similarity(callCtx, value, probe.Gold)
	cancel()
	if err != nil {
		log.Warn("equality failed, answer left pending", "error", err)
		return finish(StatusPending, StagePending, fmt.Errorf("equality: %w", err))
	}

	if !r.store.RecordProbeScore(probe, similarity) {
		log.Info("score dropped, target changed in flight")
		return finish(StatusDropped, StageDropped, nil)
	}
	outcome.Score = &similarity
	if score.Correct(similarity, r.threshold) {
		return finish(StatusScored, StageCorrect, nil)
	}
	return finish(StatusScored, StageIncorrect, nil)
}

func (r *Runner) event(probe record.Probe, stage Stage) ProbeEvent {
	return ProbeEvent{
		ItemID:   probe.ItemID,
		TextID:   probe.TextID,
		QAID:     probe.QAID,
		QAIndex:  probe.QAIndex,
		Question: probe.Question,
		Gold:     probe.Gold,
		Redact:   probe.Redact,
		Stage:    stage,
	}
}
