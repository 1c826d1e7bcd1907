package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// bodyFlags are the two ways of passing a text body.
type bodyFlags struct {
	body *string
	file *string
}

func addBodyFlags(fs *flag.FlagSet) bodyFlags {
	return bodyFlags{
		body: fs.String("body", "", "Text body"),
		file: fs.String("file", "", "Read the text body from a file (- for stdin)"),
	}
}

// read returns the body and whether one was given at all.
func (b bodyFlags) read(fs *flag.FlagSet) (string, bool, error) {
	bodySet := flagWasSet(fs, "body")
	fileSet := flagWasSet(fs, "file")
	switch {
	case bodySet && fileSet:
		return "", false, errors.New("--body and --file are mutually exclusive")
	case bodySet:
		return *b.body, true, nil
	case fileSet:
		text, err := readBodyFile(*b.file)
		return text, err == nil, err
	}
	return "", false, nil
}

func readBodyFile(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
