// Package config loads runtime configuration for the validation service from
// a YAML file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level runtime configuration.
type Config struct {
	Services  ServicesConfig  `yaml:"services"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Blob      BlobConfig      `yaml:"blob"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServicesConfig names the external collaborators.
type ServicesConfig struct {
	Ontology   ServiceConfig `yaml:"ontology"`
	Elixir     ServiceConfig `yaml:"elixir"`
	BioSamples ServiceConfig `yaml:"biosamples"`
}

// ServiceConfig is one external HTTP collaborator.
type ServiceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ArchiveConfig selects the report archive backend.
type ArchiveConfig struct {
	Driver string `yaml:"driver"` // memory|sqlite|postgres
	Path   string `yaml:"path"`   // sqlite file path
	DSN    string `yaml:"dsn"`    // postgres connection string
}

// BlobConfig selects the report artifact store backend.
type BlobConfig struct {
	Driver string `yaml:"driver"` // fs|s3|memory
	Root   string `yaml:"root"`   // fs root directory
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|text
}

// MetricsConfig controls the metrics recorder.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults used when the file or environment leaves a value unset.
const (
	DefaultOntologyBaseURL   = "https://www.ebi.ac.uk/ols/api"
	DefaultBioSamplesBaseURL = "https://www.ebi.ac.uk/biosamples/samples"
	DefaultServiceTimeout    = 10 * time.Second
	DefaultElixirTimeout     = 30 * time.Second
	DefaultMetricsPath       = "/metrics"
)

// ApplyDefaults fills unset fields with their default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Services.Ontology.BaseURL == "" {
		cfg.Services.Ontology.BaseURL = DefaultOntologyBaseURL
	}
	if cfg.Services.Ontology.Timeout <= 0 {
		cfg.Services.Ontology.Timeout = DefaultServiceTimeout
	}
	if cfg.Services.Elixir.Timeout <= 0 {
		cfg.Services.Elixir.Timeout = DefaultElixirTimeout
	}
	if cfg.Services.BioSamples.BaseURL == "" {
		cfg.Services.BioSamples.BaseURL = DefaultBioSamplesBaseURL
	}
	if cfg.Services.BioSamples.Timeout <= 0 {
		cfg.Services.BioSamples.Timeout = DefaultServiceTimeout
	}
	if cfg.Archive.Driver == "" {
		cfg.Archive.Driver = "memory"
	}
	if cfg.Blob.Driver == "" {
		cfg.Blob.Driver = "fs"
	}
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// Validate rejects configurations that cannot be acted on.
func (cfg *Config) Validate() error {
	switch cfg.Archive.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown archive driver %q", cfg.Archive.Driver)
	}
	switch cfg.Blob.Driver {
	case "fs", "s3", "memory":
	default:
		return fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
	}
	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Telemetry.Logging.Format)
	}
	return nil
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads a YAML configuration file, applies defaults and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configuration file %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse configuration file %q: %w", path, err)
	}
	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies SAMPLEVAL_SECTION_FIELD environment variables on
// top of the loaded file.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SAMPLEVAL_ONTOLOGY_BASE_URL"); val != "" {
		cfg.Services.Ontology.BaseURL = val
	}
	if val := os.Getenv("SAMPLEVAL_ELIXIR_BASE_URL"); val != "" {
		cfg.Services.Elixir.BaseURL = val
	}
	if val := os.Getenv("SAMPLEVAL_BIOSAMPLES_BASE_URL"); val != "" {
		cfg.Services.BioSamples.BaseURL = val
	}
	if val := os.Getenv("SAMPLEVAL_ARCHIVE_DRIVER"); val != "" {
		cfg.Archive.Driver = val
	}
	if val := os.Getenv("SAMPLEVAL_ARCHIVE_PATH"); val != "" {
		cfg.Archive.Path = val
	}
	if val := os.Getenv("SAMPLEVAL_ARCHIVE_DSN"); val != "" {
		cfg.Archive.DSN = val
	}
	if val := os.Getenv("SAMPLEVAL_BLOB_DRIVER"); val != "" {
		cfg.Blob.Driver = val
	}
	if val := os.Getenv("SAMPLEVAL_BLOB_FS_ROOT"); val != "" {
		cfg.Blob.Root = val
	}
	if val := os.Getenv("SAMPLEVAL_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SAMPLEVAL_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("SAMPLEVAL_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	for _, svc := range []struct {
		env string
		dst *time.Duration
	}{
		{"SAMPLEVAL_ONTOLOGY_TIMEOUT", &cfg.Services.Ontology.Timeout},
		{"SAMPLEVAL_ELIXIR_TIMEOUT", &cfg.Services.Elixir.Timeout},
		{"SAMPLEVAL_BIOSAMPLES_TIMEOUT", &cfg.Services.BioSamples.Timeout},
	} {
		if val := os.Getenv(svc.env); val != "" {
			if d, err := time.ParseDuration(val); err == nil {
				*svc.dst = d
			}
		}
	}
}
