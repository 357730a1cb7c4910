package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOptions reads an instance-defaults tier from a YAML file.
// Environment variables referenced as ${VAR} or $VAR are expanded before
// parsing, so API keys can stay in the environment (e.g. loaded from a
// .env file) rather than committed in the file. A missing file yields
// empty Options; any other failure is an error.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if errors.Is(err, fs.ErrNotExist) {
		return Options{}, nil
	}
	if err != nil {
		return Options{}, fmt.Errorf("config: load options: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var opts Options
	if err := yaml.Unmarshal([]byte(expanded), &opts); err != nil {
		return Options{}, fmt.Errorf("config: parse options: %w", err)
	}

	return opts, nil
}
