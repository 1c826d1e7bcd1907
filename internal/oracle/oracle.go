// Package oracle defines the language-model capabilities used to answer
// probes, judge answers and generate evaluation material.
package oracle

import (
	"context"
	"errors"
	"strings"

	"redactbench/internal/metrics"
)

var (
	// ErrMissingAPIKey is returned when no credential is configured.
	ErrMissingAPIKey = errors.New("api key is required")
	// ErrMissingModel is returned when no model identifier is configured.
	ErrMissingModel = errors.New("model is required")
	// ErrEmptyResponse is returned when the model produced no content.
	ErrEmptyResponse = errors.New("model returned no content")
	// ErrInvalidScore is returned when a judge produced a non-finite score.
	ErrInvalidScore = errors.New("judge returned a non-finite score")
)

// Answerer answers a question using only the supplied source text.
type Answerer interface {
	Answer(ctx context.Context, source string, question string) (string, error)
}

// Judge scores how closely a value matches a gold answer, in [0,1].
type Judge interface {
	Similarity(ctx context.Context, value string, gold string) (float64, error)
}

// QA is a generated question with its gold answer.
type QA struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// Generator produces evaluation material.
type Generator interface {
	OriginalText(ctx context.Context) (string, error)
	QuestionAnswers(ctx context.Context, text string) ([]QA, error)
	Redact(ctx context.Context, text string, policy string) (string, error)
}

// ExactMatch compares two values ignoring spaces, trailing periods and case.
func ExactMatch(value, gold string) bool {
	return canonical(value) == canonical(gold)
}

func canonical(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimRight(s, ".")
	return strings.ToLower(s)
}

type exactMatchJudge struct {
	next    Judge
	metrics *metrics.Metrics
}

// WithExactMatch wraps a judge so exact matches score 1 without a model call.
func WithExactMatch(next Judge, m *metrics.Metrics) Judge {
	return exactMatchJudge{next: next, metrics: m}
}

// Similarity implements Judge.
func (j exactMatchJudge) Similarity(ctx context.Context, value, gold string) (float64, error) {
	if ExactMatch(value, gold) {
		j.metrics.ObserveExactMatch()
		return 1, nil
	}
	return j.next.Similarity(ctx, value, gold)
}
