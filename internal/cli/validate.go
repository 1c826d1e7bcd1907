package cli

import (
	"flag"
	"fmt"
	"io"

	"redactbench/internal/config"
)

func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		cfgPath := fs.String("config", "", "Config file to check (default: search for .redactbench/config.yml)")
		if code, ok := parseArgs(cmd, fs, args, 0, 0, stdout, stderr); !ok {
			return code
		}
		path, err := resolveConfigPath(*cfgPath)
		if err == nil {
			var cfg config.Config
			if cfg, err = config.Load(path); err == nil {
				root := config.RepoRootFromConfigPath(path)
				fmt.Fprintf(stdout, "Config OK: %s\n", path)
				fmt.Fprintf(stdout, "  model    %s/%s\n", cfg.Model.Provider, cfg.Model.Name)
				fmt.Fprintf(stdout, "  storage  %s %s\n", cfg.Storage.Backend, cfg.StoragePath(root))
				fmt.Fprintf(stdout, "  scoring  threshold %.2f, %d worker(s)\n", cfg.Scoring.Threshold, cfg.Runner.Workers)
				return ExitOK
			}
		}
		fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
		return ExitError
	}
}
