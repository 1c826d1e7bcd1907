package live

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"redactbench/internal/runner"
)

var (
	titleColor = lipgloss.Color("33")
	mutedColor = lipgloss.Color("244")
	goodColor  = lipgloss.Color("42")
	badColor   = lipgloss.Color("196")
)

// paint colors text unless color is disabled.
func paint(text string, color lipgloss.Color, noColor bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func stageColor(row probeRow) lipgloss.Color {
	switch row.stage {
	case runner.StageCorrect:
		if row.redact {
			return badColor
		}
		return goodColor
	case runner.StageIncorrect:
		if row.redact {
			return goodColor
		}
		return lipgloss.Color("220")
	case runner.StageFailed:
		return badColor
	case runner.StagePending:
		return lipgloss.Color("39")
	case runner.StageAnswering, runner.StageJudging:
		return titleColor
	}
	return mutedColor
}

func headerLine(b Board, now time.Time, noColor bool) string {
	name := b.TextID
	if b.Label != "" {
		name = b.Label
	}
	line := fmt.Sprintf("Item %s, text %s", b.ItemID, name)
	if !b.Began.IsZero() {
		line += ", " + shortDuration(now.Sub(b.Began))
	}
	return paint(line, titleColor, noColor)
}

func tallyLine(b Board, noColor bool) string {
	c := b.Confusion()
	line := fmt.Sprintf("kept %d  lost %d  leaked %d  hidden %d  F1 %.2f | pending %d  failed %d  dropped %d  running %d",
		c.TruePositive, c.FalseNegative, c.FalsePositive, c.TrueNegative, c.F1(),
		b.pending, b.failed, b.dropped, b.Running())
	color := mutedColor
	if c.FalsePositive > 0 {
		color = badColor
	}
	return paint(line, color, noColor)
}

func footerLine(b Board, noColor bool) string {
	if b.final != "" {
		return paint(b.final, goodColor, noColor)
	}
	if b.note != "" {
		return paint(b.note, mutedColor, noColor)
	}
	return ""
}

// columns splits the width left after the fixed columns between the
// question, gold and answer cells.
func columns(width int) []table.Column {
	const fixed = 4 + 7 + 10 + 5 + 7 + 12
	flex := max(width-fixed, 36)
	question := flex / 2
	gold := flex / 4
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Probe", Width: 7},
		{Title: "Question", Width: question},
		{Title: "Gold", Width: gold},
		{Title: "Stage", Width: 10},
		{Title: "Answer", Width: flex - question - gold},
		{Title: "Score", Width: 5},
		{Title: "Time", Width: 7},
	}
}

func tableRows(b Board, now time.Time, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(b.rows))
	for i, row := range b.rows {
		kind := "keep"
		if row.redact {
			kind = "redact"
		}
		answer := row.answer
		if row.err != "" && answer == "" {
			answer = row.err
		}
		scoreCell := ""
		if row.scored {
			scoreCell = strconv.FormatFloat(row.score, 'f', 2, 64)
		}
		timeCell := ""
		if d := row.elapsed(now); d > 0 {
			timeCell = shortDuration(d)
		}
		stage := string(row.stage)
		if stage == "" {
			stage = string(runner.StageQueued)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			kind,
			oneLine(row.question, 80),
			oneLine(row.gold, 40),
			paint(stage, stageColor(row), noColor),
			oneLine(answer, 40),
			scoreCell,
			timeCell,
		})
	}
	return rows
}

// oneLine collapses whitespace and cuts text to limit runes.
func oneLine(text string, limit int) string {
	flat := []rune(strings.Join(strings.Fields(text), " "))
	if len(flat) <= limit || limit < 2 {
		return string(flat)
	}
	return string(flat[:limit-1]) + "…"
}

func shortDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Round(100 * time.Millisecond).String()
}
