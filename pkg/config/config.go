package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/marmos91/avrcpbrowse/internal/logger"
	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/capture/prune"
	"github.com/marmos91/avrcpbrowse/pkg/inspector"
	"github.com/spf13/viper"
)

// Config represents the complete avrcpbrowse configuration.
//
// This structure captures all configurable aspects of the tool including:
//   - Logging configuration
//   - Codec limits and decoding policy
//   - Capture store selection and configuration (store-specific)
//   - Ingest rate limiting and capture mode
//   - S3 archive configuration
//   - Metrics endpoint
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (AVRCPBROWSE_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// Store Configuration Pattern:
// Each capture store defines its own configuration type. The Config struct
// contains type-specific sections (capture.memory, capture.badger) and only
// the section matching the selected type is used.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Codec configures payload limits and decoding policy.
	// Uses the avrcp.Options type directly to avoid duplication.
	Codec avrcp.Options `mapstructure:"codec" yaml:"codec"`

	// Capture specifies the capture store type and type-specific configuration
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture"`

	// Inspector configures the ingest path.
	// Uses the inspector.Config type directly.
	Inspector inspector.Config `mapstructure:"inspector" yaml:"inspector"`

	// Archive configures export of captures to S3
	Archive ArchiveConfig `mapstructure:"archive" yaml:"archive"`

	// Metrics configures the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// CaptureConfig specifies capture store configuration.
//
// The Type field determines which store implementation is used.
// Only the corresponding type-specific configuration section is used.
type CaptureConfig struct {
	// Type specifies which capture store implementation to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory badger"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory" yaml:"memory"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger" yaml:"badger"`

	// Prune configures age based cleanup, for any store type
	Prune prune.Config `mapstructure:"prune" yaml:"prune"`
}

// ArchiveConfig specifies where captures are archived.
type ArchiveConfig struct {
	// Enabled turns on the `export` command and archive-on-ingest
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// S3 contains S3-specific configuration (bucket, region, endpoint, ...)
	S3 map[string]any `mapstructure:"s3" yaml:"s3"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled starts the metrics HTTP server
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Host is the listen address (empty listens on all interfaces)
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the listen port
	Port int `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (AVRCPBROWSE_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the AVRCPBROWSE_ prefix and underscores
	// Example: AVRCPBROWSE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("AVRCPBROWSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about, so bind
	// the scalar keys explicitly for configurations without a file.
	for _, key := range []string{
		"logging.level", "logging.format", "logging.output",
		"codec.max_attributes", "codec.max_text_length", "codec.utf8_policy", "codec.allow_trailing_bytes",
		"capture.type",
		"inspector.rate_limit", "inspector.burst", "inspector.max_payload_bytes", "inspector.capture_mode",
		"archive.enabled",
		"metrics.enabled", "metrics.host", "metrics.port",
	} {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/avrcpbrowse/config.yaml
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			// Explicit path that does not exist yet
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "avrcpbrowse")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "avrcpbrowse")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}

// ConfigureLogging applies the logging section to the global logger.
//
// Returns a close function for the log file when Output is a path; it is a
// no-op for stdout and stderr.
func ConfigureLogging(cfg *LoggingConfig) (func() error, error) {
	logger.SetLevel(cfg.Level)
	logger.SetFormat(cfg.Format)

	switch cfg.Output {
	case "", "stdout":
		logger.SetOutput(os.Stdout)
		return func() error { return nil }, nil
	case "stderr":
		logger.SetOutput(os.Stderr)
		return func() error { return nil }, nil
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.Output, err)
		}
		logger.SetOutput(f)
		return f.Close, nil
	}
}
