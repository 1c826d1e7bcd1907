package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Parse decodes exactly one YAML document. Unknown keys are errors so typos
// do not silently fall back to defaults.
func Parse(data []byte) (Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var cfg Config
	switch err := dec.Decode(&cfg); {
	case errors.Is(err, io.EOF):
		return Config{}, errors.New("parse config: file is empty")
	case err != nil:
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return cfg, nil
	case err != nil:
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return Config{}, errors.New("parse config: multiple YAML documents are not supported")
}
