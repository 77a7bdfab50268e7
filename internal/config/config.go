package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "gherkinplan.yml"

// Config represents the gherkinplan.yml configuration
type Config struct {
	Version  int      `yaml:"version"`
	Settings Settings `yaml:"settings"`
	Features Features `yaml:"features"`
	Steps    Steps    `yaml:"steps"`
	Runs     Runs     `yaml:"runs"`
}

type Settings struct {
	// Output: pretty, json, events
	Output string `yaml:"output"`
	// Strict fails validation on unmatched steps of non-WIP scenarios
	Strict bool `yaml:"strict"`
	// Anchored requires step patterns to match the whole step text (default true)
	Anchored *bool `yaml:"anchored,omitempty"`
	// NotFound prefixes unmatched steps with "(NOT FOUND) " (default true)
	NotFound *bool  `yaml:"not_found,omitempty"`
	LogLevel string `yaml:"log_level"`
}

type Features struct {
	Paths []string `yaml:"paths"`
}

type Steps struct {
	Catalogs []string `yaml:"catalogs"`
}

type Runs struct {
	Save bool   `yaml:"save"`
	Dir  string `yaml:"dir"`
}

// IsAnchored reports whether step patterns match the whole step text.
func (s *Settings) IsAnchored() bool {
	return s.Anchored == nil || *s.Anchored
}

// UseNotFound reports whether the (NOT FOUND) alternate generator is used.
func (s *Settings) UseNotFound() bool {
	return s.NotFound == nil || *s.NotFound
}

// Load reads and parses the gherkinplan.yml configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Settings.Output == "" {
		c.Settings.Output = "pretty"
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = "warn"
	}
	if len(c.Features.Paths) == 0 {
		c.Features.Paths = []string{"./features"}
	}
	if c.Runs.Dir == "" {
		c.Runs.Dir = ".gherkinplan/runs"
	}
}

func (c *Config) validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", c.Version)
	}

	validOutputs := map[string]bool{"pretty": true, "json": true, "events": true}
	if !validOutputs[c.Settings.Output] {
		return fmt.Errorf("invalid output format: %s", c.Settings.Output)
	}

	if _, err := zerolog.ParseLevel(c.Settings.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Settings.LogLevel, err)
	}

	return nil
}
