package mcap2mat

import (
	"github.com/ghalamif/mcap2mat/internal/app/config"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// TimeRange is the closed log-time window in seconds.
	TimeRange = config.TimeRange
	// LogConfig selects the log level.
	LogConfig = config.LogConfig
	// MetricsConfig names the Prometheus textfile written after a run.
	MetricsConfig = config.MetricsConfig
	// CatalogConfig configures the Postgres run catalog.
	CatalogConfig = config.CatalogConfig
	// UploadConfig configures S3 publishing of the output file.
	UploadConfig = config.UploadConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// ConfigFromArgs parses command-line flags, optionally layered over -config.
func ConfigFromArgs(name string, args []string) (*Config, error) {
	return config.FromArgs(name, args)
}

// ParseTimeRange parses a "start,end" window where either side may be empty.
func ParseTimeRange(value string) (*TimeRange, error) {
	return config.ParseTimeRange(value)
}
