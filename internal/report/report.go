// Package report renders per-text score tables for items, as terminal text
// and as an HTML page.
package report

import (
	"fmt"

	"redactbench/internal/record"
	"redactbench/internal/score"
)

// ItemReport is one item with the evaluation of each of its texts, the
// original first as the baseline.
type ItemReport struct {
	Position int
	Item     record.Item
	Results  []score.Result
}

// Build evaluates every text of every item.
func Build(items []record.Item, threshold float64) []ItemReport {
	reports := make([]ItemReport, 0, len(items))
	for i, item := range items {
		reports = append(reports, ItemReport{
			Position: i + 1,
			Item:     item,
			Results:  score.EvaluateAll(item, threshold),
		})
	}
	return reports
}

// textName is the display name of the text at index.
func textName(result score.Result) string {
	return record.TextName(result.Index, result.Label)
}

func formatRatio(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
