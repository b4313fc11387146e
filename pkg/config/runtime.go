package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/avrcpbrowse/internal/logger"
	archives3 "github.com/marmos91/avrcpbrowse/pkg/archive/s3"
	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/marmos91/avrcpbrowse/pkg/capture/prune"
	"github.com/marmos91/avrcpbrowse/pkg/inspector"
)

// Runtime holds every component built from a configuration.
type Runtime struct {
	Config    *Config
	Metrics   *MetricsResult
	Codec     *avrcp.Codec
	Store     capture.Store
	Inspector *inspector.Inspector

	// Pruner deletes expired captures. Callers start it for long runs.
	Pruner *prune.Pruner

	// Exporter is nil unless archive.enabled is true
	Exporter *archives3.Exporter
}

// InitializeRuntime creates a fully wired Runtime from the provided configuration.
//
// This function orchestrates the complete initialization process:
//  1. Creates metrics (no-op when disabled)
//  2. Creates the codec
//  3. Opens the capture store
//  4. Creates the inspector on top of codec and store
//  5. Creates the capture pruner (not started)
//  6. Creates the S3 exporter if archiving is enabled
//
// On failure, anything opened so far is closed again.
//
// Example:
//
//	cfg, _ := config.Load("config.yaml")
//	rt, err := config.InitializeRuntime(ctx, cfg)
//	if err != nil {
//	    log.Fatalf("Failed to initialize: %v", err)
//	}
//	defer rt.Close()
func InitializeRuntime(ctx context.Context, cfg *Config) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is nil")
	}

	logger.Debug("Initializing runtime from configuration")

	rt := &Runtime{Config: cfg}
	rt.Metrics = InitializeMetrics(cfg)

	codec, err := CreateCodec(cfg)
	if err != nil {
		return nil, err
	}
	rt.Codec = codec

	store, err := CreateCaptureStore(ctx, &cfg.Capture, rt.Metrics.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture store: %w", err)
	}
	rt.Store = store

	insp, err := CreateInspector(cfg, codec, store, rt.Metrics.Inspector)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Inspector = insp

	pruner, err := CreatePruner(cfg, store)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Pruner = pruner

	if cfg.Archive.Enabled {
		exporter, err := CreateArchiveExporter(ctx, &cfg.Archive, rt.Metrics.Archive)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("failed to create archive exporter: %w", err)
		}
		rt.Exporter = exporter
	}

	logger.Debug("Runtime ready: capture=%s, capture_mode=%s, archive=%t",
		cfg.Capture.Type, cfg.Inspector.CaptureMode, cfg.Archive.Enabled)

	return rt, nil
}

// Close releases the capture store.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Store != nil {
		if err := rt.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close capture store: %w", err))
		}
	}
	return errors.Join(errs...)
}
