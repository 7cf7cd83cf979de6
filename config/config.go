// Package config loads the engine's ambient configuration: verbose
// trace logging, the Sentry DSN for error reporting, and the Prometheus
// metrics namespace. LoadConfig starts from the package defaults and
// applies a YAML file on top of them; ApplyEnvOverrides then applies
// environment variables on top of whatever the Config already holds.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the engine's ambient configuration.
//
// Thread Safety: Config instances are not thread-safe. Load one at
// startup and treat it as read-only thereafter.
type Config struct {
	// VerboseTrace enables verbose live-call-stack logging from the
	// console reporter.
	VerboseTrace bool `yaml:"verboseTrace"`

	// SentryDSN, if non-empty, is passed to
	// observability.NewSentryReporter by cmd/inspect. Left empty,
	// cmd/inspect uses the console reporter.
	SentryDSN string `yaml:"sentryDSN"`

	// MetricsNamespace prefixes every Prometheus metric name the
	// metrics package registers.
	MetricsNamespace string `yaml:"metricsNamespace"`
}

// DefaultConfig returns a Config with the engine's default values:
// verbose tracing off, no Sentry DSN (console reporter only), and the
// "laneway" metrics namespace.
func DefaultConfig() *Config {
	return &Config{
		VerboseTrace:     false,
		SentryDSN:        "",
		MetricsNamespace: "laneway",
	}
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.MetricsNamespace == "" {
		return fmt.Errorf("config: metrics namespace must not be empty")
	}
	return nil
}

// LoadConfig loads configuration from a YAML file, unmarshaling it on
// top of DefaultConfig: fields missing from the file keep the package
// defaults. The result is validated before it is returned.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: path must not be empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyEnvOverrides applies the engine's three environment variables on
// top of c, in the order they're listed in the package docs:
//
//   - LANEWAY_VERBOSE_TRACE: "true" or "false"
//   - LANEWAY_SENTRY_DSN: a Sentry DSN string
//   - LANEWAY_METRICS_NAMESPACE: a Prometheus metric name prefix
//
// A malformed value is silently ignored, keeping whatever c already
// held, so a bad environment never prevents startup.
func (c *Config) ApplyEnvOverrides() {
	if val := os.Getenv("LANEWAY_VERBOSE_TRACE"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			c.VerboseTrace = parsed
		}
	}
	if val := os.Getenv("LANEWAY_SENTRY_DSN"); val != "" {
		c.SentryDSN = val
	}
	if val := os.Getenv("LANEWAY_METRICS_NAMESPACE"); val != "" {
		c.MetricsNamespace = val
	}
}
