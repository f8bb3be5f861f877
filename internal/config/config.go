package config

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/prettymuchbryce/treewatch/internal/ignore"
	"github.com/prettymuchbryce/treewatch/internal/notify"
	"github.com/prettymuchbryce/treewatch/internal/pathutil"
)

// Config represents the top-level configuration.
type Config struct {
	Root    string        `yaml:"root"`
	Ignore  IgnoreConfig  `yaml:"ignore"`
	Backend BackendConfig `yaml:"backend"`
	Trigger TriggerConfig `yaml:"trigger"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// IgnoreConfig holds the ignore patterns. An omitted list keeps the defaults;
// an explicit empty list disables them.
type IgnoreConfig struct {
	Files []string `yaml:"files"`
	Dirs  []string `yaml:"dirs"`
}

// BackendConfig selects the notification backend.
type BackendConfig struct {
	Kind         notify.Kind   `yaml:"kind"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// TriggerConfig configures the command run after changes settle.
type TriggerConfig struct {
	Command  string        `yaml:"command"`
	Debounce time.Duration `yaml:"debounce"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address to serve /metrics on. Empty disables it.
	Listen string `yaml:"listen"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultIgnoreConfig returns the default ignore patterns.
func DefaultIgnoreConfig() IgnoreConfig {
	return IgnoreConfig{
		Files: append([]string(nil), ignore.DefaultFilePatterns...),
		Dirs:  append([]string(nil), ignore.DefaultDirPatterns...),
	}
}

// DefaultBackendConfig returns the default backend configuration.
func DefaultBackendConfig() BackendConfig {
	return BackendConfig{
		Kind:         notify.KindFsnotify,
		PollInterval: notify.DefaultPollInterval,
	}
}

// DefaultTriggerConfig returns the default trigger configuration.
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		Debounce: 300 * time.Millisecond,
	}
}

// DefaultLoggingConfig returns the default logging configuration.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level: "warn",
	}
}

// Load reads and parses a configuration file using the real filesystem.
func Load(path string) (*Config, error) {
	return LoadWithFs(path, afero.NewOsFs())
}

// LoadWithFs reads and parses a configuration file using the provided filesystem.
func LoadWithFs(path string, afs afero.Fs) (*Config, error) {
	expanded := pathutil.ExpandTilde(path)

	data, err := afero.ReadFile(afs, expanded)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	// Start with defaults
	config := &Config{
		Ignore:  DefaultIgnoreConfig(),
		Backend: DefaultBackendConfig(),
		Trigger: DefaultTriggerConfig(),
		Logging: DefaultLoggingConfig(),
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	config.Root = pathutil.ExpandTilde(config.Root)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values that cannot be used.
func (c *Config) Validate() error {
	switch c.Backend.Kind {
	case notify.KindFsnotify, notify.KindPoll:
	default:
		return fmt.Errorf("backend.kind: unknown backend %q", c.Backend.Kind)
	}
	if c.Backend.Kind == notify.KindPoll && c.Backend.PollInterval <= 0 {
		return fmt.Errorf("backend.poll_interval: must be positive, got %v", c.Backend.PollInterval)
	}
	if c.Trigger.Debounce < 0 {
		return fmt.Errorf("trigger.debounce: must not be negative, got %v", c.Trigger.Debounce)
	}
	if _, err := ignore.New(c.Ignore.Files); err != nil {
		return fmt.Errorf("ignore.files: %w", err)
	}
	if _, err := ignore.New(c.Ignore.Dirs); err != nil {
		return fmt.Errorf("ignore.dirs: %w", err)
	}
	return nil
}

// HasRoot reports whether a root directory is configured.
func (c *Config) HasRoot() bool {
	return c.Root != ""
}
