package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"redactbench/internal/runner"
)

// Controller owns a running Bubble Tea program and forwards runner events to
// it. It satisfies runner.Observer.
type Controller struct {
	program *tea.Program
	done    chan struct{}
	quit    sync.Once
}

// Start runs the UI on the alternate screen of out until Close is called or
// the user quits. Events sent after the program exited are discarded.
func Start(out io.Writer, opts Options) *Controller {
	if out == nil {
		out = os.Stdout
	}
	c := &Controller{
		program: tea.NewProgram(NewModel(opts), tea.WithOutput(out), tea.WithAltScreen()),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(c.done)
		_, _ = c.program.Run()
	}()
	return c
}

// BatchStarted resets the board for a new batch.
func (c *Controller) BatchStarted(itemID, textID, label string, probes int) {
	c.program.Send(batchStartedMsg{itemID: itemID, textID: textID, label: label, probes: probes})
}

// ProbeUpdated forwards a pipeline stage change.
func (c *Controller) ProbeUpdated(event runner.ProbeEvent) {
	c.program.Send(probeMsg(event))
}

// BatchFinished shows the final score.
func (c *Controller) BatchFinished(batch runner.Batch) {
	c.program.Send(batchFinishedMsg(batch))
}

// Close asks the program to exit.
func (c *Controller) Close() {
	c.quit.Do(c.program.Quit)
}

// Wait blocks until the program has exited.
func (c *Controller) Wait() {
	<-c.done
}
