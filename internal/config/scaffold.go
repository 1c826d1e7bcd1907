package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// ScaffoldOptions are the answers collected by init.
type ScaffoldOptions struct {
	Provider string
	Model    string
	Backend  string
	Path     string
}

// ScaffoldConfig renders the default config file.
func ScaffoldConfig(opts ScaffoldOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("version: 1\n")
		b.WriteString("model:\n")
		fmt.Fprintf(&b, "  provider: %s\n", strconv.Quote(opts.Provider))
		fmt.Fprintf(&b, "  name: %s\n", strconv.Quote(opts.Model))
		fmt.Fprintf(&b, "  max_output_tokens: %d\n", DefaultMaxOutputTokens)
		fmt.Fprintf(&b, "  timeout_seconds: %d\n", DefaultTimeoutSeconds)
		b.WriteString("storage:\n")
		fmt.Fprintf(&b, "  backend: %s\n", strconv.Quote(opts.Backend))
		fmt.Fprintf(&b, "  path: %s\n", strconv.Quote(opts.Path))
		b.WriteString("scoring:\n  threshold: 0.8\n")
		fmt.Fprintf(&b, "runner:\n  workers: %d\n", DefaultWorkers)
		fmt.Fprintf(&b, "log:\n  mode: %s\n", DefaultLogMode)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func (opts *ScaffoldOptions) normalize() {
	if opts.Provider == "" {
		opts.Provider = ProviderOpenAI
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Backend == "" {
		opts.Backend = BackendJSONL
	}
	if opts.Path == "" {
		opts.Path = DefaultStoragePath
		if opts.Backend == BackendDuckDB {
			opts.Path = "data.duckdb"
		}
	}
}

// Scaffold writes a new config file. It refuses to overwrite an existing one.
func Scaffold(configPath string, opts ScaffoldOptions) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}
	if info, err := os.Stat(configPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", configPath)
		}
		return fmt.Errorf("config file already exists at %q", configPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	opts.normalize()

	var builder strings.Builder
	if err := ScaffoldConfig(opts).Render(context.Background(), &builder); err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	if _, err := Parse([]byte(builder.String())); err != nil {
		return fmt.Errorf("scaffolded config is invalid: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(builder.String()), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
