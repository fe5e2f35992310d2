// Package config loads the enumerator settings from YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/2767mr/duccipaths/internal/ducci"
)

// Config holds all duccipaths configuration.
type Config struct {
	// Starting components range over [Min, Max).
	Range RangeConfig `yaml:"range"`

	Search SearchConfig `yaml:"search"`

	Output OutputConfig `yaml:"output"`

	Logging LoggingConfig `yaml:"logging"`
}

type RangeConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// SearchConfig bounds a single search. Zero disables a limit.
type SearchConfig struct {
	MaxDepth int `yaml:"max_depth"`
	MaxNodes int `yaml:"max_nodes"`
}

type OutputConfig struct {
	Path          string `yaml:"path"`
	MetricsFile   string `yaml:"metrics_file"` // node exporter textfile, optional
	ProgressEvery int    `yaml:"progress_every"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

func DefaultConfig() *Config {
	return &Config{
		Range: RangeConfig{Min: 0, Max: 40},
		Search: SearchConfig{
			MaxDepth: ducci.DefaultMaxDepth,
			MaxNodes: ducci.DefaultMaxNodes,
		},
		Output: OutputConfig{
			Path:          filepath.Join("results", "ducci_paths.txt"),
			ProgressEvery: 10_000,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"DUCCI_MIN", &c.Range.Min},
		{"DUCCI_MAX", &c.Range.Max},
		{"DUCCI_MAX_DEPTH", &c.Search.MaxDepth},
		{"DUCCI_MAX_NODES", &c.Search.MaxNodes},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", e.name, v, err)
		}
		*e.dst = n
	}

	if path := os.Getenv("DUCCI_OUTPUT"); path != "" {
		c.Output.Path = path
	}
	if level := os.Getenv("DUCCI_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	return nil
}

// Validate checks the configuration for values the enumerator cannot run
// with.
func (c *Config) Validate() error {
	if c.Range.Min < math.MinInt8 || c.Range.Max > math.MaxInt8+1 {
		return fmt.Errorf("range [%d,%d) does not fit in [%d,%d]", c.Range.Min, c.Range.Max, math.MinInt8, math.MaxInt8)
	}
	if c.Range.Min >= c.Range.Max {
		return fmt.Errorf("range [%d,%d) is empty", c.Range.Min, c.Range.Max)
	}
	if c.Search.MaxDepth < 0 || c.Search.MaxNodes < 0 {
		return fmt.Errorf("search limits must not be negative")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if c.Output.ProgressEvery < 0 {
		return fmt.Errorf("progress_every must not be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// Explorer returns the search limits as a ducci.Explorer.
func (c *Config) Explorer() ducci.Explorer {
	return ducci.Explorer{MaxDepth: c.Search.MaxDepth, MaxNodes: c.Search.MaxNodes}
}
