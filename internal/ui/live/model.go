// Package live renders answer batches as a full-screen table that updates as
// probe pipelines progress.
package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"redactbench/internal/runner"
)

// Options configures the live UI.
type Options struct {
	NoColor bool
	// Refresh is how often elapsed times are redrawn. Defaults to 200ms.
	Refresh time.Duration
	// OnQuit runs when the user quits, typically cancelling the batch.
	OnQuit func()
}

type batchStartedMsg struct {
	itemID, textID, label string
	probes                int
}

type probeMsg runner.ProbeEvent

type batchFinishedMsg runner.Batch

type refreshMsg time.Time

// Model is the Bubble Tea model behind the live UI.
type Model struct {
	board   Board
	table   table.Model
	now     time.Time
	refresh time.Duration
	noColor bool
	onQuit  func()
}

// NewModel builds an empty model.
func NewModel(opts Options) Model {
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = 200 * time.Millisecond
	}
	t := table.New(table.WithColumns(columns(120)), table.WithFocused(false))
	styles := table.DefaultStyles()
	if !opts.NoColor {
		styles.Header = styles.Header.Foreground(lipgloss.Color("252")).Bold(true)
	}
	t.SetStyles(styles)
	return Model{table: t, now: time.Now(), refresh: refresh, noColor: opts.NoColor, onQuit: opts.OnQuit}
}

// Init schedules the first redraw.
func (m Model) Init() tea.Cmd {
	return m.scheduleRefresh()
}

// Update folds runner messages, resizes and key presses into the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.table.SetColumns(columns(msg.Width))
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-4, 1))
		return m, nil
	case batchStartedMsg:
		m.board = NewBoard(msg.itemID, msg.textID, msg.label, msg.probes, time.Now())
	case probeMsg:
		m.board = m.board.Apply(runner.ProbeEvent(msg))
	case batchFinishedMsg:
		m.board = m.board.Finish(runner.Batch(msg))
	case refreshMsg:
		m.now = time.Time(msg)
		m.table.SetRows(tableRows(m.board, m.now, m.noColor))
		return m, m.scheduleRefresh()
	default:
		return m, nil
	}
	m.table.SetRows(tableRows(m.board, m.now, m.noColor))
	return m, nil
}

// View draws the header, running tally, probe table and last note.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		headerLine(m.board, m.now, m.noColor),
		tallyLine(m.board, m.noColor),
		m.table.View(),
		footerLine(m.board, m.noColor),
	)
}

func (m Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return refreshMsg(t) })
}
