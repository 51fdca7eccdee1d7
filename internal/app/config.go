package app

import "errors"

// Config holds the settings for one trainconf invocation.
type Config struct {
	// DefaultsPath is the base configuration document. Required.
	DefaultsPath string
	// ConfigPath is an optional override document. When empty, the
	// defaults document's own config_file field is honored instead.
	ConfigPath string
	// Overrides are dotted command-line assignments, applied last.
	Overrides []string

	// Print emits the resolved document as YAML on the output writer.
	Print bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates an invocation configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DefaultsPath == "" {
		return nil, errors.New("DefaultsPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
