package cli

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
)

// commonFlags are accepted by every command that touches the store.
type commonFlags struct {
	config *string
	item   *string
}

func newFlagSet(cmd *Command) (*flag.FlagSet, commonFlags) {
	fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
	common := commonFlags{
		config: fs.String("config", "", "Path to config file (default: search for .redactbench/config.yml)"),
		item:   fs.String("item", "", "Item id or 1-based position (default: current item)"),
	}
	return fs, common
}

// parseArgs parses flags and enforces the positional argument count. It
// returns ok=false with the exit code when the command should stop.
func parseArgs(cmd *Command, fs *flag.FlagSet, args []string, minArgs, maxArgs int, stdout, stderr io.Writer) (int, bool) {
	if slices.ContainsFunc(args, func(a string) bool { return a == "-h" || a == "--help" }) {
		printCommandUsage(cmd, fs, stdout)
		return ExitOK, false
	}
	fs.SetOutput(io.Discard)
	var problem string
	switch err := fs.Parse(args); {
	case err != nil:
		problem = fmt.Sprintf("invalid arguments: %v", err)
	case fs.NArg() < minArgs:
		problem = "missing arguments"
	case maxArgs >= 0 && fs.NArg() > maxArgs:
		problem = "unexpected arguments: " + strings.Join(fs.Args()[maxArgs:], " ")
	default:
		return ExitOK, true
	}
	fmt.Fprintln(stderr, problem)
	printCommandUsage(cmd, fs, stderr)
	return ExitUsage, false
}

// flagWasSet reports whether name appeared on the command line.
func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
