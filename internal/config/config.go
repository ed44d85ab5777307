// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure for the edit engine.
type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Read    ReadConfig    `toml:"read"`
	Repair  RepairConfig  `toml:"repair"`
	Logging LoggingConfig `toml:"logging"`
}

// EngineConfig holds path-safety settings.
type EngineConfig struct {
	// ProjectRoot bounds every path resolution; defaults to the process
	// working directory when unset.
	ProjectRoot string `toml:"project_root"`
}

// ProjectRootOrDefault returns the configured root or the process working
// directory if unset.
func (e EngineConfig) ProjectRootOrDefault() string {
	if e.ProjectRoot != "" {
		return e.ProjectRoot
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// ReadConfig holds read_file_hashlined windowing and size policy.
type ReadConfig struct {
	MaxFileSizeBytes int  `toml:"max_file_size_bytes"`
	DefaultWindow    int  `toml:"default_window_lines"`
	RespectGitIgnore bool `toml:"respect_git_ignore"`
}

// MaxFileSizeOrDefault returns the configured size limit or 1 MiB if unset.
func (r ReadConfig) MaxFileSizeOrDefault() int {
	if r.MaxFileSizeBytes <= 0 {
		return 1 << 20
	}
	return r.MaxFileSizeBytes
}

// DefaultWindowOrDefault returns the configured default window or 2000
// lines if unset.
func (r ReadConfig) DefaultWindowOrDefault() int {
	if r.DefaultWindow <= 0 {
		return 2000
	}
	return r.DefaultWindow
}

// RepairConfig holds the missing-lines diagnostic escalation thresholds
// as loaded from the config file. The ladder in internal/repair uses its
// own constants and does not read these fields.
type RepairConfig struct {
	EscalationThreshold int `toml:"escalation_threshold"`
	ExampleThreshold    int `toml:"example_threshold"`
	AnchorBailThreshold int `toml:"anchor_bail_threshold"`
	FileBailThreshold   int `toml:"file_bail_threshold"`
}

// LoggingConfig holds zerolog setup options.
type LoggingConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
	JSON  bool   `toml:"json"`
}

// LevelOrDefault returns the configured log level or "info" if unset.
func (l LoggingConfig) LevelOrDefault() string {
	if l.Level == "" {
		return "info"
	}
	return l.Level
}

// Load reads configuration from a TOML file and applies environment
// variable overrides. An empty path yields built-in defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		applyEnvOverrides(cfg)
		return cfg, cfg.Validate()
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.Read.MaxFileSizeBytes < 0 {
		errs = append(errs, errors.New("read.max_file_size_bytes must not be negative"))
	}
	if c.Read.DefaultWindow < 0 {
		errs = append(errs, errors.New("read.default_window_lines must not be negative"))
	}

	switch c.Logging.LevelOrDefault() {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level=%q must be one of debug, info, warn, error", c.Logging.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"HASHEDIT_PROJECT_ROOT", func(v string) { cfg.Engine.ProjectRoot = v }},
		{"HASHEDIT_LOG_LEVEL", func(v string) { cfg.Logging.Level = v }},
	} {
		if v := os.Getenv(setter.env); v != "" {
			setter.apply(v)
		}
	}
}

// DataDir returns the path to the hashedit data directory (~/.config/hashedit).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hashedit"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
