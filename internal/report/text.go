package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	baselineStyle = cellStyle.Foreground(lipgloss.Color("244"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Columns of the score table.
var Columns = []string{"#", "text", "TP", "FN", "FP", "TN", "precision", "recall", "F1", "pending", "unanswered"}

// Rows returns the score table cells, one row per text.
func Rows(rep ItemReport) [][]string {
	rows := make([][]string, 0, len(rep.Results))
	for _, result := range rep.Results {
		c := result.Confusion
		rows = append(rows, []string{
			strconv.Itoa(result.Index),
			textName(result),
			strconv.Itoa(c.TruePositive),
			strconv.Itoa(c.FalseNegative),
			strconv.Itoa(c.FalsePositive),
			strconv.Itoa(c.TrueNegative),
			formatRatio(result.Precision),
			formatRatio(result.Recall),
			formatRatio(result.F1),
			strconv.Itoa(result.Pending),
			strconv.Itoa(result.Unanswered),
		})
	}
	return rows
}

// WriteTable renders an item's score table to w.
func WriteTable(w io.Writer, rep ItemReport, noColor bool) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Columns...).
		Rows(Rows(rep)...)
	if noColor {
		t = t.StyleFunc(func(_, _ int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	} else {
		t = t.BorderStyle(borderStyle).StyleFunc(func(row, _ int) lipgloss.Style {
			switch row {
			case table.HeaderRow:
				return headerStyle
			case 0:
				return baselineStyle
			default:
				return cellStyle
			}
		})
	}
	threshold := 0.0
	if len(rep.Results) > 0 {
		threshold = rep.Results[0].Threshold
	}
	if _, err := fmt.Fprintf(w, "Item %d (%s), %d question(s), threshold %.2f\n", rep.Position, rep.Item.ID, len(rep.Item.QA), threshold); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// WriteLeakRates prints the share of scored redact probes that leaked, per
// text index, in the order of the report's texts. Texts without a rate are
// skipped.
func WriteLeakRates(w io.Writer, rep ItemReport, rates map[int]float64) error {
	parts := make([]string, 0, len(rates))
	for _, result := range rep.Results {
		if rate, ok := rates[result.Index]; ok {
			parts = append(parts, fmt.Sprintf("%s %.2f", textName(result), rate))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "Leak rate: %s\n", strings.Join(parts, ", "))
	return err
}
