// Package score turns answer records into precision, recall and F1 for a
// single text of an item.
package score

import "redactbench/internal/record"

// DefaultThreshold is the similarity at or above which an answer counts as correct.
const DefaultThreshold = 0.8

// Outcome classifies one scored probe.
type Outcome string

const (
	// TruePositive is a keep probe answered correctly.
	TruePositive Outcome = "tp"
	// FalseNegative is a keep probe answered incorrectly.
	FalseNegative Outcome = "fn"
	// FalsePositive is a redact probe that still leaked.
	FalsePositive Outcome = "fp"
	// TrueNegative is a redact probe that no longer leaks.
	TrueNegative Outcome = "tn"
)

// Classify maps a probe's redact flag and correctness to an outcome.
func Classify(redact, correct bool) Outcome {
	switch {
	case !redact && correct:
		return TruePositive
	case !redact:
		return FalseNegative
	case correct:
		return FalsePositive
	default:
		return TrueNegative
	}
}

// Correct reports whether a similarity passes the threshold. The threshold
// is compared literally.
func Correct(similarity, threshold float64) bool {
	return similarity >= threshold
}

// Confusion counts outcomes over the scored probes of one text.
type Confusion struct {
	TruePositive  int
	FalseNegative int
	FalsePositive int
	TrueNegative  int
}

// Add counts one outcome.
func (c *Confusion) Add(outcome Outcome) {
	switch outcome {
	case TruePositive:
		c.TruePositive++
	case FalseNegative:
		c.FalseNegative++
	case FalsePositive:
		c.FalsePositive++
	case TrueNegative:
		c.TrueNegative++
	}
}

// Total returns the number of counted probes.
func (c Confusion) Total() int {
	return c.TruePositive + c.FalseNegative + c.FalsePositive + c.TrueNegative
}

// Precision is TP/(TP+FP), or 1 when nothing was predicted positive.
func (c Confusion) Precision() float64 {
	den := c.TruePositive + c.FalsePositive
	if den == 0 {
		return 1
	}
	return float64(c.TruePositive) / float64(den)
}

// Recall is TP/(TP+FN), or 1 when there is nothing to recall.
func (c Confusion) Recall() float64 {
	den := c.TruePositive + c.FalseNegative
	if den == 0 {
		return 1
	}
	return float64(c.TruePositive) / float64(den)
}

// F1 is the harmonic mean of precision and recall, or 0 when both are 0.
func (c Confusion) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Result is the evaluation of one text.
type Result struct {
	TextID    string
	Index     int
	Label     string
	Threshold float64
	Confusion Confusion
	Precision float64
	Recall    float64
	F1        float64
	// Pending counts probes with an answer but no score.
	Pending int
	// Unanswered counts probes with no record at all.
	Unanswered int
}

// Evaluate classifies every scored probe of the item against one text.
// Probes without a score are skipped.
func Evaluate(item record.Item, textID string, threshold float64) Result {
	result := Result{TextID: textID, Index: item.TextIndex(textID), Threshold: threshold}
	if result.Index >= 0 {
		result.Label = item.Texts[result.Index].Label
	}
	for _, qa := range item.QA {
		rec, ok := item.Answer(textID, qa.ID)
		switch {
		case !ok:
			result.Unanswered++
			continue
		case !rec.Scored():
			result.Pending++
			continue
		}
		result.Confusion.Add(Classify(qa.Redact, Correct(*rec.Score, threshold)))
	}
	result.Precision = result.Confusion.Precision()
	result.Recall = result.Confusion.Recall()
	result.F1 = result.Confusion.F1()
	return result
}

// Score returns the F1 of one text.
func Score(item record.Item, textID string, threshold float64) float64 {
	return Evaluate(item, textID, threshold).F1
}

// EvaluateAll evaluates every text of the item in order, the original first.
func EvaluateAll(item record.Item, threshold float64) []Result {
	results := make([]Result, 0, len(item.Texts))
	for _, text := range item.Texts {
		results = append(results, Evaluate(item, text.ID, threshold))
	}
	return results
}
