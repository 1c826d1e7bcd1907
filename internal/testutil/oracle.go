package testutil

import (
	"context"
	"strings"
	"sync"

	"redactbench/internal/oracle"
)

// FakeAnswerer answers from a question->answer table or a custom function.
type FakeAnswerer struct {
	mu      sync.Mutex
	calls   int
	Answers map[string]string
	Fn      func(ctx context.Context, source, question string) (string, error)
}

// Answer implements oracle.Answerer.
func (f *FakeAnswerer) Answer(ctx context.Context, source, question string) (string, error) {
	f.mu.Lock()
	f.calls++
	fn := f.Fn
	answer, ok := f.Answers[question]
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, source, question)
	}
	if ok {
		return answer, nil
	}
	return "unknown", nil
}

// Calls returns the number of Answer invocations.
func (f *FakeAnswerer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeJudge scores from an answer->score table or a custom function.
// Unlisted answers score 0.
type FakeJudge struct {
	mu     sync.Mutex
	calls  int
	Scores map[string]float64
	Fn     func(ctx context.Context, value, gold string) (float64, error)
}

// Similarity implements oracle.Judge.
func (f *FakeJudge) Similarity(ctx context.Context, value, gold string) (float64, error) {
	f.mu.Lock()
	f.calls++
	fn := f.Fn
	s := f.Scores[value]
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, value, gold)
	}
	return s, nil
}

// Calls returns the number of Similarity invocations.
func (f *FakeJudge) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeGenerator returns canned generation results.
type FakeGenerator struct {
	Original string
	Pairs    []oracle.QA
	Err      error
}

// OriginalText implements oracle.Generator.
func (f *FakeGenerator) OriginalText(context.Context) (string, error) {
	return f.Original, f.Err
}

// QuestionAnswers implements oracle.Generator.
func (f *FakeGenerator) QuestionAnswers(context.Context, string) ([]oracle.QA, error) {
	return f.Pairs, f.Err
}

// Redact implements oracle.Generator by masking every gold answer found in the text.
func (f *FakeGenerator) Redact(_ context.Context, text, _ string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	for _, pair := range f.Pairs {
		if pair.A != "" {
			text = strings.ReplaceAll(text, pair.A, "[REDACTED]")
		}
	}
	return text, nil
}
