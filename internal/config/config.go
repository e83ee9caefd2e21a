// Package config defines process configuration and its loading hooks.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"unicode/utf8"
)

// Output formats accepted by OutputFormat.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// OutputFormat selects how summaries are printed: json, yaml or table.
	OutputFormat string `koanf:"output_format"`

	// CSVComma is the field delimiter for .csv inputs. Must be one character.
	CSVComma string `koanf:"csv_comma"`

	// Concurrency bounds how many input files are summarized at once.
	Concurrency int `koanf:"concurrency"`

	// MetricsEnabled toggles Prometheus instrumentation.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsOut, when set, receives a text dump of the metrics registry
	// after each command. "-" means stderr.
	MetricsOut string `koanf:"metrics_out"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		OutputFormat:   FormatTable,
		CSVComma:       ",",
		Concurrency:    runtime.NumCPU(),
		MetricsEnabled: true,
	}
}

// Comma returns the CSV delimiter as a rune.
func (c *Config) Comma() rune {
	r, _ := utf8.DecodeRuneInString(c.CSVComma)
	return r
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.OutputFormat) {
	case FormatJSON, FormatYAML, FormatTable:
	default:
		return fmt.Errorf("%w: output_format %q must be json, yaml or table", ErrInvalidConfig, c.OutputFormat)
	}
	if utf8.RuneCountInString(c.CSVComma) != 1 {
		return fmt.Errorf("%w: csv_comma %q must be a single character", ErrInvalidConfig, c.CSVComma)
	}
	switch c.Comma() {
	case '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("%w: csv_comma %q is not a valid delimiter", ErrInvalidConfig, c.CSVComma)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConfig, c.Concurrency)
	}
	return nil
}
