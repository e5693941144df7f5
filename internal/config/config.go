// Package config handles loading and managing application configuration
package config

import (
	"os"
	"strings"
)

// Environment variables read by ApplyEnvironmentVariables
const (
	EnvLogLevel     = "ENCLAVE_LOG_LEVEL"
	EnvMetricsFile  = "ENCLAVE_METRICS_FILE"
	EnvOTLPEndpoint = "ENCLAVE_OTLP_ENDPOINT"
	EnvEnvFiles     = "ENCLAVE_ENV_FILES"
)

// Config represents the main application configuration
type Config struct {
	Version      string        `json:"version"`
	LogLevel     string        `json:"logLevel,omitempty"`
	EnvFiles     []string      `json:"envFiles,omitempty"`     // dotenv files overlaid on the security environment snapshot
	Participants []string      `json:"participants,omitempty"` // fully-qualified participant names checked by "check"
	Metrics      MetricsConfig `json:"metrics,omitempty"`
	Tracing      TracingConfig `json:"tracing,omitempty"`
}

// MetricsConfig contains Prometheus export settings
type MetricsConfig struct {
	TextfilePath string `json:"textfilePath,omitempty"` // node exporter textfile target; empty disables export
}

// TracingConfig contains OpenTelemetry export settings
type TracingConfig struct {
	Endpoint string `json:"endpoint,omitempty"` // OTLP/HTTP traces URL; empty disables tracing
}

// ApplyDefaults applies default values to the configuration
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ApplyEnvironmentVariables applies environment variable overrides
func (c *Config) ApplyEnvironmentVariables() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
	if path := os.Getenv(EnvMetricsFile); path != "" {
		c.Metrics.TextfilePath = path
	}
	if endpoint := os.Getenv(EnvOTLPEndpoint); endpoint != "" {
		c.Tracing.Endpoint = endpoint
	}
	if files := os.Getenv(EnvEnvFiles); files != "" {
		c.EnvFiles = parseCommaSeparated(files)
	}
}

// parseCommaSeparated parses a comma-separated string into a slice of trimmed strings
func parseCommaSeparated(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
