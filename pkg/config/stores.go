package config

import (
	"context"
	"fmt"

	"github.com/marmos91/avrcpbrowse/internal/logger"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	capturebadger "github.com/marmos91/avrcpbrowse/pkg/capture/badger"
	capturememory "github.com/marmos91/avrcpbrowse/pkg/capture/memory"
	"github.com/marmos91/avrcpbrowse/pkg/capture/prune"
	"github.com/marmos91/avrcpbrowse/pkg/metrics"
	"github.com/mitchellh/mapstructure"
)

// CreateCaptureStore creates a capture store based on configuration.
//
// This factory function uses the Type field to determine which store implementation
// to create, then decodes the type-specific configuration from the corresponding
// map and passes it to the store's constructor.
//
// Supported types:
//   - "memory": Uses pkg/capture/memory (lost on exit)
//   - "badger": Uses pkg/capture/badger (persistent)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Capture store configuration
//   - m: Store operation metrics (nil = no metrics)
//
// Returns:
//   - capture.Store: Initialized capture store
//   - error: Configuration or initialization error
func CreateCaptureStore(ctx context.Context, cfg *CaptureConfig, m metrics.CaptureMetrics) (capture.Store, error) {
	switch cfg.Type {
	case "memory":
		return createMemoryCaptureStore(cfg.Memory, m)
	case "badger":
		return createBadgerCaptureStore(ctx, cfg.Badger, m)
	default:
		return nil, fmt.Errorf("unknown capture store type: %q", cfg.Type)
	}
}

// createMemoryCaptureStore creates an in-memory capture store.
func createMemoryCaptureStore(options map[string]any, m metrics.CaptureMetrics) (capture.Store, error) {
	var memCfg capturememory.Config
	if err := mapstructure.Decode(options, &memCfg); err != nil {
		return nil, fmt.Errorf("invalid memory capture store config: %w", err)
	}
	if memCfg.MaxCaptures < 0 {
		return nil, fmt.Errorf("memory capture store: max_captures must be >= 0")
	}
	memCfg.Metrics = m

	logger.Debug("Memory capture store initialized: max_captures=%d", memCfg.MaxCaptures)
	return capturememory.New(memCfg), nil
}

// createBadgerCaptureStore creates a BadgerDB capture store.
func createBadgerCaptureStore(ctx context.Context, options map[string]any, m metrics.CaptureMetrics) (capture.Store, error) {
	var badgerCfg capturebadger.Config

	// Retention is written as a duration string ("72h") in YAML
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &badgerCfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(options); err != nil {
		return nil, fmt.Errorf("invalid badger capture store config: %w", err)
	}
	badgerCfg.Metrics = m

	store, err := capturebadger.New(ctx, badgerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger capture store: %w", err)
	}

	logger.Info("Badger capture store initialized: path=%s, retention=%s", badgerCfg.DBPath, badgerCfg.Retention)
	return store, nil
}

// CreatePruner creates the capture pruner from the capture.prune section.
// The pruner is returned unstarted, even when background pruning is
// disabled, so one-off passes remain possible.
func CreatePruner(cfg *Config, store capture.Store) (*prune.Pruner, error) {
	pruner, err := prune.New(store, cfg.Capture.Prune)
	if err != nil {
		return nil, fmt.Errorf("invalid capture prune config: %w", err)
	}
	return pruner, nil
}
