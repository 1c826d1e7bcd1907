package cucumber

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/cucumber/godog"

	"redactbench/internal/report"
)

// InitializeScenario registers the step vocabulary on a fresh world.
func InitializeScenario(sc *godog.ScenarioContext) {
	w := newWorld()
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		w.close()
		return ctx, err
	})

	sc.Given(`^a project with a valid redactbench configuration$`, w.project)
	sc.Given(`^the config is invalid$`, func() error {
		if err := w.project(); err != nil {
			return err
		}
		return w.writeConfig(invalidConfig)
	})
	sc.Given(`^a dataset file "([^"]+)" containing:$`, func(name string, body *godog.DocString) error {
		if err := w.project(); err != nil {
			return err
		}
		return w.writeFile(name, body.Content)
	})

	sc.When(`^I run "([^"]+)"$`, w.run)

	sc.Then(`^the exit code is zero$`, func() error {
		if w.code != 0 {
			return fmt.Errorf("exit code %d, stderr %q", w.code, w.stderr.String())
		}
		return nil
	})
	sc.Then(`^the exit code is non-zero$`, func() error {
		if w.code == 0 {
			return fmt.Errorf("expected failure, stdout %q", w.stdout.String())
		}
		return nil
	})
	sc.Then(`^the output lists these commands:$`, func(table *godog.Table) error {
		for _, row := range table.Rows {
			for _, cell := range row.Cells {
				if name := strings.TrimSpace(cell.Value); name != "" && !strings.Contains(w.stdout.String(), name) {
					return fmt.Errorf("command %q missing from help", name)
				}
			}
		}
		return nil
	})
	sc.Then(`^the error message points to the invalid field$`, func() error {
		return contains("error output", w.stderr.String(), "version")
	})
	sc.Then(`^the output contains "([^"]+)"$`, func(want string) error {
		return contains("output", w.stdout.String(), want)
	})
	sc.Then(`^the error output contains "([^"]+)"$`, func(want string) error {
		return contains("error output", w.stderr.String(), want)
	})
	sc.Then(`^the score of "([^"]+)" has ([A-Za-z0-9]+) "([^"]+)"$`, w.scoreCell)
}

func contains(stream, got, want string) error {
	if !strings.Contains(got, want) {
		return fmt.Errorf("expected %q in %s, got %q", want, stream, got)
	}
	return nil
}

// scoreCell finds the score table row of a text and compares one column.
func (w *world) scoreCell(text, column, want string) error {
	col := slices.Index(report.Columns, column)
	if col < 0 {
		return fmt.Errorf("no score column %q", column)
	}
	for _, line := range strings.Split(w.stdout.String(), "\n") {
		cells := rowCells(line)
		if len(cells) != len(report.Columns) || cells[1] != text {
			continue
		}
		if cells[col] != want {
			return fmt.Errorf("%s of %q is %s, want %s", column, text, cells[col], want)
		}
		return nil
	}
	return fmt.Errorf("no score row for %q in:\n%s", text, w.stdout.String())
}

// rowCells splits a bordered table row into trimmed cells. Border and
// separator lines yield nil.
func rowCells(line string) []string {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "│") {
		return nil
	}
	var cells []string
	for _, part := range strings.Split(strings.Trim(line, "│"), "│") {
		cells = append(cells, strings.TrimSpace(part))
	}
	return cells
}
