package app

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultConfigPath is the task file used when none is given.
const DefaultConfigPath = "sitegrid.hcl"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPath is the task file, or a directory of task files.
	ConfigPath string
	// Targets are the tasks to run. Empty means "default".
	Targets []string

	LogFormat string
	LogLevel  string
	Workers   int

	// Port overrides the dev server port from the task file when not nil.
	Port *int
	// NoOpen stops serve from opening a browser.
	NoOpen bool
	// Color enables ANSI colours in console reports.
	Color bool
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = DefaultConfigPath
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = []string{"default"}
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("invalid workers: %d, must be positive", cfg.Workers)
	}
	if cfg.Port != nil && (*cfg.Port < 0 || *cfg.Port > 65535) {
		return nil, fmt.Errorf("invalid port: %d", *cfg.Port)
	}
	return &cfg, nil
}
