package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// isTerminal reports whether w is attached to a TTY. Tests replace it.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// colorEnabled reports whether styled output may be written to w.
func colorEnabled(w io.Writer) bool {
	return os.Getenv("NO_COLOR") == "" && isTerminal(w)
}

// chooseProgress maps the --ui flag to live or plain progress output. note is
// set when a live display was asked for but stdout cannot show one.
func chooseProgress(flag string, stdout io.Writer) (live bool, note string, err error) {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "", "auto":
		return isTerminal(stdout), "", nil
	case "live":
		if !isTerminal(stdout) {
			return false, "stdout is not a terminal; printing plain progress instead of the live view", nil
		}
		return true, "", nil
	case "plain":
		return false, "", nil
	}
	return false, "", fmt.Errorf("unknown --ui value %q (want auto, live or plain)", flag)
}
