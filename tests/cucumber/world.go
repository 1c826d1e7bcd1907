// Package cucumber drives the redactbench CLI from Gherkin features.
package cucumber

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"redactbench/internal/cli"
	"redactbench/internal/config"
)

const validConfig = `version: 1
model:
  provider: openai
  name: gpt-4.1-mini
storage:
  backend: jsonl
  path: data.jsonl
log:
  mode: quiet
`

// Unsupported version, so validation fails on the version field.
const invalidConfig = `version: 2
storage:
  backend: jsonl
  path: data.jsonl
`

// world is the state of one scenario: a throwaway project and the result of
// the last command.
type world struct {
	dir        string
	configPath string
	files      map[string]string
	savedEnv   map[string]*string

	stdout bytes.Buffer
	stderr bytes.Buffer
	code   int
}

func newWorld() *world {
	return &world{files: map[string]string{}, savedEnv: map[string]*string{}}
}

// project creates the scenario project on first use.
func (w *world) project() error {
	if w.dir != "" {
		return nil
	}
	dir, err := os.MkdirTemp("", "redactbench-feature-*")
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	w.dir = dir
	w.configPath = config.ConfigPath(dir)
	if err := os.MkdirAll(filepath.Dir(w.configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	for _, key := range []string{config.EnvProvider, config.EnvModel} {
		w.clearEnv(key)
	}
	return w.writeConfig(validConfig)
}

func (w *world) writeConfig(body string) error {
	if err := os.WriteFile(w.configPath, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (w *world) writeFile(name, body string) error {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(body+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	w.files[name] = path
	return nil
}

// clearEnv unsets key for the rest of the scenario.
func (w *world) clearEnv(key string) {
	if _, saved := w.savedEnv[key]; !saved {
		if value, ok := os.LookupEnv(key); ok {
			w.savedEnv[key] = &value
		} else {
			w.savedEnv[key] = nil
		}
	}
	_ = os.Unsetenv(key)
}

// run executes a command line against the scenario project. The project
// config is passed explicitly and file names written by the scenario resolve
// inside the project.
func (w *world) run(line string) error {
	args := strings.Fields(line)
	if len(args) > 0 && args[0] == "redactbench" {
		args = args[1:]
	}
	if len(args) == 0 {
		return fmt.Errorf("empty command %q", line)
	}
	for i, arg := range args {
		if path, ok := w.files[arg]; ok {
			args[i] = path
		}
	}
	if w.configPath != "" && !strings.HasPrefix(args[0], "-") {
		args = append([]string{args[0], "--config", w.configPath}, args[1:]...)
	}
	w.stdout.Reset()
	w.stderr.Reset()
	w.code = cli.Run(args, &w.stdout, &w.stderr)
	return nil
}

func (w *world) close() {
	for key, value := range w.savedEnv {
		if value == nil {
			_ = os.Unsetenv(key)
		} else {
			_ = os.Setenv(key, *value)
		}
	}
	if w.dir != "" {
		_ = os.RemoveAll(w.dir)
	}
}
