// Package config provides layered configuration management.
// Priority: defaults < file < env < flags
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all schedtrace configuration.
type Config struct {
	Version int `yaml:"version"`

	Tasks     TasksConfig     `yaml:"tasks"`
	Watch     WatchConfig     `yaml:"watch"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// TasksConfig controls task partitioning.
type TasksConfig struct {
	// Infra lists pseudo-task names that are not schedulable work and
	// never appear as task rows.
	Infra []string `yaml:"infra"`

	// Watchdog is the pseudo-task carrying watchdog pet events.
	Watchdog string `yaml:"watchdog"`
}

// WatchConfig controls watch-mode behavior.
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// Duration wraps time.Duration so config files can use human-readable
// values like "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// TelemetryConfig for optional OTLP trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Tasks: TasksConfig{
			Infra:    []string{"WDT", "INFO", "Supervisor"},
			Watchdog: "WDT",
		},
		Watch: WatchConfig{
			Debounce: Duration(500 * time.Millisecond),
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "localhost:4317",
		},
	}
}

// Load builds the effective configuration. When path is empty the default
// location (~/.schedtrace/config.yaml) is used if present; an explicitly
// named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".schedtrace", "config.yaml")
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case explicit:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
func (c *Config) applyEnv() {
	if v := os.Getenv("SCHEDTRACE_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
		c.Telemetry.Enabled = true
	}
	if v := os.Getenv("SCHEDTRACE_WATCHDOG_TASK"); v != "" {
		c.Tasks.Watchdog = v
	}
}
