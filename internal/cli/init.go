package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"redactbench/internal/config"
	"redactbench/internal/vcs"
)

// discoverGitRoot returns the enclosing git root, or "" outside a repository.
var discoverGitRoot = func(startDir string) string {
	root, err := vcs.DiscoverRepoRoot(context.Background(), startDir)
	if err != nil {
		return ""
	}
	return root
}

// isIgnored reports whether git already ignores path. Git failures count as
// not ignored.
var isIgnored = func(repoRoot, path string) bool {
	ignored, err := vcs.IsIgnored(context.Background(), repoRoot, path)
	return err == nil && ignored
}

// initTarget is where init writes and which repository it belongs to.
type initTarget struct {
	configPath string
	repoRoot   string
}

func resolveInitTarget(flagValue string) (initTarget, error) {
	if value := strings.TrimSpace(flagValue); value != "" {
		abs, err := filepath.Abs(value)
		if err != nil {
			return initTarget{}, err
		}
		return initTarget{configPath: abs, repoRoot: discoverGitRoot(config.RepoRootFromConfigPath(abs))}, nil
	}
	root := discoverGitRoot("")
	base := root
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return initTarget{}, err
		}
		base = wd
	}
	return initTarget{configPath: config.ConfigPath(base), repoRoot: root}, nil
}

// checkFree refuses to overwrite an existing config or write through a file
// where the config directory should be.
func (t initTarget) checkFree() error {
	dir := filepath.Dir(t.configPath)
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory", dir)
	}
	_, err := os.Stat(t.configPath)
	switch {
	case err == nil:
		return fmt.Errorf("config file already exists at %s", t.configPath)
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("stat config file: %w", err)
	}
	return nil
}

// askScaffold collects the scaffold options interactively.
func askScaffold(p *prompter) (config.ScaffoldOptions, error) {
	var (
		opts config.ScaffoldOptions
		err  error
	)
	if opts.Provider, err = p.ask("Model provider (openai|openrouter)", config.ProviderOpenAI, config.ProviderOpenAI, config.ProviderOpenRouter); err != nil {
		return opts, err
	}
	if opts.Model, err = p.ask("Model name", config.DefaultModel); err != nil {
		return opts, err
	}
	if opts.Backend, err = p.ask("Storage backend (jsonl|duckdb)", config.BackendJSONL, config.BackendJSONL, config.BackendDuckDB); err != nil {
		return opts, err
	}
	dataFile := config.DefaultStoragePath
	if opts.Backend == config.BackendDuckDB {
		dataFile = "data.duckdb"
	}
	opts.Path, err = p.ask("Data file (relative to the repo root)", dataFile)
	return opts, err
}

func runInit(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		cfgPath := fs.String("config", "", "Where to write the config (default: .redactbench/config.yml at the repo root)")
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		fail := func(err error) int {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}

		target, err := resolveInitTarget(*cfgPath)
		if err != nil {
			return fail(err)
		}
		if err := target.checkFree(); err != nil {
			return fail(err)
		}

		p := newPrompter(stdin, stdout)
		ok, err := p.confirm(fmt.Sprintf("Initialize redactbench config in %s?", filepath.Dir(target.configPath)), true)
		if err != nil {
			return fail(err)
		}
		if !ok {
			fmt.Fprintln(stderr, "Init cancelled.")
			return ExitError
		}
		opts, err := askScaffold(p)
		if err != nil {
			return fail(err)
		}
		ignore := false
		if target.repoRoot != "" && !isIgnored(target.repoRoot, opts.Path) {
			if ignore, err = p.confirm("Add data file to .gitignore?", false); err != nil {
				return fail(err)
			}
		}

		if err := config.Scaffold(target.configPath, opts); err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", target.configPath)
		if ignore {
			changed, err := ensureGitignored(target.repoRoot, opts.Path)
			if err != nil {
				return fail(err)
			}
			if changed {
				fmt.Fprintf(stdout, "Updated %s\n", filepath.Join(target.repoRoot, ".gitignore"))
			}
		}
		fmt.Fprintf(stdout, "Set %s before running generate or answer.\n", config.EnvAPIKey)
		return ExitOK
	}
}
