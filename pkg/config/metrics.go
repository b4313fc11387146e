package config

import (
	"github.com/marmos91/avrcpbrowse/pkg/metrics"
	promMetrics "github.com/marmos91/avrcpbrowse/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// Inspector is the ingest metrics collector (never nil, uses noop if disabled)
	Inspector metrics.InspectorMetrics

	// Capture is the capture store metrics collector (never nil)
	Capture metrics.CaptureMetrics

	// Archive is the S3 upload metrics collector (never nil)
	Archive metrics.ArchiveMetrics
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates Prometheus-backed metrics instances for all components
//
// If metrics are disabled:
//   - Returns nil server
//   - Returns no-op metrics implementations (zero overhead)
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{
			Server:    nil,
			Inspector: metrics.NewNoopInspectorMetrics(),
			Capture:   metrics.NewNoopCaptureMetrics(),
			Archive:   metrics.NewNoopArchiveMetrics(),
		}
	}

	metrics.InitRegistry()

	server := metrics.NewServer(metrics.ServerConfig{
		Host: cfg.Metrics.Host,
		Port: cfg.Metrics.Port,
	})

	return &MetricsResult{
		Server:    server,
		Inspector: promMetrics.NewInspectorMetrics(),
		Capture:   promMetrics.NewCaptureMetrics(cfg.Capture.Type),
		Archive:   promMetrics.NewArchiveMetrics(),
	}
}
