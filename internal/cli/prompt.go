package cli

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
)

// prompter asks questions on out and reads one answer per input line.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// next returns the next trimmed input line. more is false once input is
// exhausted.
func (p *prompter) next() (line string, more bool, err error) {
	if p.in.Scan() {
		return strings.TrimSpace(p.in.Text()), true, nil
	}
	return "", false, p.in.Err()
}

// ask returns the answer to label, or def for a blank line. When allowed is
// non-empty the answer is lowercased and must be one of its values.
func (p *prompter) ask(label, def string, allowed ...string) (string, error) {
	for {
		if def != "" {
			fmt.Fprintf(p.out, "%s [%s]: ", label, def)
		} else {
			fmt.Fprintf(p.out, "%s: ", label)
		}
		line, more, err := p.next()
		if err != nil {
			return "", err
		}
		switch {
		case line == "" && def != "":
			return def, nil
		case line == "" && !more:
			return "", fmt.Errorf("no answer for %q", label)
		case line == "":
			continue
		case len(allowed) == 0:
			return line, nil
		}
		if value := strings.ToLower(line); slices.Contains(allowed, value) {
			return value, nil
		}
		if !more {
			return "", fmt.Errorf("invalid answer %q for %q", line, label)
		}
		fmt.Fprintf(p.out, "Please answer one of: %s.\n", strings.Join(allowed, ", "))
	}
}

// confirm asks a yes/no question.
func (p *prompter) confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", label, hint)
		line, more, err := p.next()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if !more {
			return false, fmt.Errorf("invalid answer %q", line)
		}
		fmt.Fprintln(p.out, "Please answer yes or no.")
	}
}
