// Package jsonl persists the item collection to a JSON Lines file.
package jsonl

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"redactbench/internal/dataset"
	"redactbench/internal/record"
)

// File is a record.Persistence backed by one JSON Lines file.
type File struct {
	path string
}

// New returns a file store at path.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Load reads the collection. A missing file loads as empty.
func (f *File) Load(ctx context.Context) ([]record.Item, error) {
	if f.path == "" {
		return nil, fmt.Errorf("data path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}
	report, err := dataset.Decode(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return report.Items, nil
}

// Save replaces the file using an atomic rename.
func (f *File) Save(ctx context.Context, items []record.Item) error {
	if f.path == "" {
		return fmt.Errorf("data path is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := dataset.Encode(&buf, items); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmpPath := f.path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	_, writeErr := file.Write(buf.Bytes())
	syncErr := file.Sync()
	closeErr := file.Close()
	for _, err := range []error{writeErr, syncErr, closeErr} {
		if err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("write temp file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
