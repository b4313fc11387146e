package config

import (
	"strings"
	"time"

	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/inspector"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Store-specific defaults are handled by store implementations
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyCodecDefaults(&cfg.Codec)
	applyCaptureDefaults(&cfg.Capture)
	applyInspectorDefaults(&cfg.Inspector)
	applyArchiveDefaults(&cfg.Archive)
	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyCodecDefaults fills the codec limits so the generated config file
// shows the effective values.
func applyCodecDefaults(cfg *avrcp.Options) {
	if cfg.MaxAttributes == 0 {
		cfg.MaxAttributes = avrcp.DefaultMaxAttributes
	}
	if cfg.MaxTextLength == 0 {
		cfg.MaxTextLength = avrcp.DefaultMaxTextLength
	}
	if cfg.UTF8Policy == "" {
		cfg.UTF8Policy = avrcp.UTF8Strict
	}
}

// applyCaptureDefaults sets capture store defaults.
func applyCaptureDefaults(cfg *CaptureConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}

	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}

	// Apply defaults for all store types (for config file generation)
	if _, ok := cfg.Memory["max_captures"]; !ok {
		cfg.Memory["max_captures"] = 1000
	}
	if _, ok := cfg.Badger["db_path"]; !ok {
		cfg.Badger["db_path"] = "/tmp/avrcpbrowse-captures"
	}

	if cfg.Prune.Interval == 0 {
		cfg.Prune.Interval = time.Hour
	}
	if cfg.Prune.MaxAge == 0 {
		cfg.Prune.MaxAge = 7 * 24 * time.Hour
	}
}

// applyInspectorDefaults sets ingest defaults.
func applyInspectorDefaults(cfg *inspector.Config) {
	// RateLimit defaults to 0 (unlimited)

	if cfg.MaxPayloadBytes == 0 {
		cfg.MaxPayloadBytes = 65536 // 64KB, far above any browsing response
	}
	if cfg.CaptureMode == "" {
		cfg.CaptureMode = inspector.CaptureFailures
	}
}

// applyArchiveDefaults sets archive defaults.
func applyArchiveDefaults(cfg *ArchiveConfig) {
	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}
	if _, ok := cfg.S3["key_prefix"]; !ok {
		cfg.S3["key_prefix"] = "avrcp/"
	}
}

// applyMetricsDefaults sets metrics endpoint defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Capture: CaptureConfig{
			Memory: make(map[string]any),
			Badger: make(map[string]any),
		},
		Archive: ArchiveConfig{
			S3: map[string]any{
				"region": "us-east-1",
				"bucket": "avrcp-captures",
			},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
