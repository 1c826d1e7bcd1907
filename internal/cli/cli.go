// Package cli implements the redactbench command line.
package cli

import (
	"flag"
	"fmt"
	"io"
	"slices"
)

// Process exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Command is one subcommand of the CLI.
type Command struct {
	Name    string
	Group   string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

type handlerFactory func(cmd *Command) func(args []string, stdout, stderr io.Writer) int

func define(name, group, summary string, usage []string, factory handlerFactory) *Command {
	cmd := &Command{Name: name, Group: group, Summary: summary, Usage: usage}
	cmd.Run = factory(cmd)
	return cmd
}

// groupOrder is the section order of the top-level help.
var groupOrder = []string{"Setup", "Items", "Questions", "Model", "Results"}

// Run dispatches args to a subcommand and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	switch args[0] {
	case "-h", "--help", "help":
		printUsage(stdout)
		return ExitOK
	}
	i := slices.IndexFunc(commands, func(c *Command) bool { return c.Name == args[0] })
	if i < 0 {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}
	return commands[i].Run(args[1:], stdout, stderr)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: redactbench <command> [flags]")
	for _, group := range groupOrder {
		fmt.Fprintf(w, "\n%s:\n", group)
		for _, cmd := range commands {
			if cmd.Group == group {
				fmt.Fprintf(w, "  %-15s %s\n", cmd.Name, cmd.Summary)
			}
		}
	}
	fmt.Fprintln(w, "\nRun \"redactbench <command> --help\" for the flags of a command.")
}

// printCommandUsage prints the usage lines, summary and, when fs is given,
// the flag defaults of one command.
func printCommandUsage(cmd *Command, fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	if fs == nil {
		return
	}
	hasFlags := false
	fs.VisitAll(func(*flag.Flag) { hasFlags = true })
	if hasFlags {
		fmt.Fprintln(w, "\nFlags:")
		fs.SetOutput(w)
		fs.PrintDefaults()
	}
}

var commands = []*Command{
	define("init", "Setup", "Scaffold .redactbench/config.yml", []string{
		"redactbench init [--config <path>]",
	}, runInit),
	define("validate", "Setup", "Validate .redactbench/config.yml", []string{
		"redactbench validate [--config <path>]",
	}, runValidate),
	define("items", "Items", "List items", []string{
		"redactbench items",
	}, runItems),
	define("show", "Items", "Show an item with its texts, questions and answers", []string{
		"redactbench show [--item <ref>]",
	}, runShow),
	define("item-add", "Items", "Add an item", []string{
		"redactbench item-add [--body <text> | --file <path>]",
	}, runItemAdd),
	define("item-delete", "Items", "Delete an item", []string{
		"redactbench item-delete [--item <ref>] [--all]",
	}, runItemDelete),
	define("original-set", "Items", "Replace the original text", []string{
		"redactbench original-set [--item <ref>] (--body <text> | --file <path>)",
	}, runOriginalSet),
	define("policy-set", "Items", "Replace the redaction policy", []string{
		"redactbench policy-set [--item <ref>] <policy>",
	}, runPolicySet),
	define("variant-add", "Items", "Add a redacted variant", []string{
		"redactbench variant-add [--item <ref>] [--label <label>] (--body <text> | --file <path>)",
	}, runVariantAdd),
	define("variant-set", "Items", "Edit a variant body or label", []string{
		"redactbench variant-set [--item <ref>] [--text <ref>] [--body <text> | --file <path>] [--label <label>]",
	}, runVariantSet),
	define("variant-delete", "Items", "Delete a variant", []string{
		"redactbench variant-delete [--item <ref>] [--text <ref>] [--all]",
	}, runVariantDelete),
	define("qa-add", "Questions", "Add a question probe", []string{
		"redactbench qa-add [--item <ref>] -q <question> -a <gold answer> [--redact]",
	}, runQAAdd),
	define("qa-edit", "Questions", "Edit a question probe", []string{
		"redactbench qa-edit [--item <ref>] --qa <ref> [-q <question>] [-a <gold answer>] [--redact=true|false]",
	}, runQAEdit),
	define("qa-delete", "Questions", "Delete a question probe", []string{
		"redactbench qa-delete [--item <ref>] --qa <ref>",
	}, runQADelete),
	define("generate", "Model", "Generate an item, questions or a variant with the model", []string{
		"redactbench generate item",
		"redactbench generate qa [--item <ref>]",
		"redactbench generate variant [--item <ref>]",
	}, runGenerate),
	define("answer", "Model", "Answer question probes against a text and score them", []string{
		"redactbench answer [--item <ref>] [--text <ref>] [--qa <ref>] [--ui auto|live|plain]",
	}, runAnswer),
	define("score", "Results", "Print precision, recall and F1 for every text", []string{
		"redactbench score [--item <ref> | --all] [--threshold <value>]",
	}, runScore),
	define("import", "Results", "Append items from a JSON Lines file", []string{
		"redactbench import <file>",
	}, runImport),
	define("export", "Results", "Write items as JSON Lines", []string{
		"redactbench export [file]",
	}, runExport),
	define("serve", "Results", "Serve the HTML report, export and metrics", []string{
		"redactbench serve [--addr <host:port>]",
	}, runServe),
}
