// Package prune removes expired captures from a capture store.
//
// The badger store can expire captures on its own (retention), the memory
// store only bounds their number. The pruner gives every backend the same
// age based cleanup, optionally keeping decode failures around until they
// have been looked at.
package prune

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marmos91/avrcpbrowse/internal/logger"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
)

// Pruner periodically deletes captures older than a maximum age.
//
// Thread Safety: Safe for concurrent use.
type Pruner struct {
	store  capture.Store
	config Config
	now    func() time.Time
	stopCh chan struct{}
	doneCh chan struct{}
}

// Config contains configuration for the pruner.
type Config struct {
	// Enabled controls whether background pruning runs (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Interval is how often to prune (default: 1h)
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`

	// MaxAge is the age after which a capture is deleted. Required.
	MaxAge time.Duration `mapstructure:"max_age" yaml:"max_age"`

	// KeepFailures keeps captures whose payload failed to decode
	KeepFailures bool `mapstructure:"keep_failures" yaml:"keep_failures"`

	// DryRun logs what would be deleted without deleting anything
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`
}

// New creates a pruner. It is not started; call Start for background
// pruning or RunNow for a single pass.
//
// Parameters:
//   - store: Capture store to prune
//   - config: Pruning configuration
//
// Returns:
//   - *Pruner: Initialized pruner (not started)
//   - error: Returns error if MaxAge is not positive
func New(store capture.Store, config Config) (*Pruner, error) {
	if store == nil {
		return nil, fmt.Errorf("prune: capture store is required")
	}
	if config.MaxAge <= 0 {
		return nil, fmt.Errorf("prune: max_age must be > 0")
	}
	if config.Interval == 0 {
		config.Interval = time.Hour
	}

	return &Pruner{
		store:  store,
		config: config,
		now:    time.Now,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Start begins background pruning. It does nothing when the pruner is
// disabled.
func (p *Pruner) Start() {
	if !p.config.Enabled {
		logger.Debug("Capture pruning disabled")
		close(p.doneCh)
		return
	}

	logger.Info("Starting capture pruner: interval=%s max_age=%s keep_failures=%v dry_run=%v",
		p.config.Interval, p.config.MaxAge, p.config.KeepFailures, p.config.DryRun)

	go p.worker()
}

// Stop stops background pruning and waits for an in-progress pass.
// Must be called at most once, after Start.
//
// Returns ctx.Err() if the context expires before the worker exits.
func (p *Pruner) Stop(ctx context.Context) error {
	close(p.stopCh)

	select {
	case <-p.doneCh:
		return nil
	case <-ctx.Done():
		logger.Warn("Capture pruner shutdown timeout")
		return ctx.Err()
	}
}

// RunNow runs a single pruning pass and blocks until it completes.
func (p *Pruner) RunNow(ctx context.Context) (*Stats, error) {
	return p.prune(ctx)
}

func (p *Pruner) worker() {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), p.config.Interval)
			stats, err := p.prune(ctx)
			cancel()

			if err != nil {
				logger.Error("Capture pruning failed: %v", err)
			} else {
				logger.Info("Capture pruning completed: %s", stats.Summary())
			}

		case <-p.stopCh:
			return
		}
	}
}

// prune performs a single pass:
//  1. List every capture
//  2. Select captures older than MaxAge (skipping failures if configured)
//  3. Delete them one by one
func (p *Pruner) prune(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	cutoff := p.now().Add(-p.config.MaxAge)

	captures, err := p.store.List(ctx, capture.ListOptions{})
	if err != nil {
		return stats, fmt.Errorf("failed to list captures: %w", err)
	}
	stats.ScannedCount = len(captures)

	var expired []*capture.Capture
	for _, c := range captures {
		if !c.CapturedAt.Before(cutoff) {
			continue
		}
		if p.config.KeepFailures && c.Outcome != capture.OutcomeOK {
			continue
		}
		expired = append(expired, c)
	}
	stats.ExpiredCount = len(expired)

	if p.config.DryRun {
		for _, c := range expired {
			logger.Info("Prune: DRY RUN - would delete %s capture %s (%s)", c.Kind, c.ID, c.CapturedAt.Format(time.RFC3339))
		}
		stats.EndTime = time.Now()
		return stats, nil
	}

	for _, c := range expired {
		if err := ctx.Err(); err != nil {
			stats.EndTime = time.Now()
			return stats, err
		}

		err := p.store.Delete(ctx, c.ID)
		switch {
		case err == nil, errors.Is(err, capture.ErrCaptureNotFound):
			stats.DeletedCount++
		default:
			stats.FailedCount++
			logger.Debug("Prune: failed to delete %s: %v", c.ID, err)
		}
	}

	stats.EndTime = time.Now()
	return stats, nil
}

// Stats contains statistics from a pruning pass.
type Stats struct {
	StartTime    time.Time // When the pass started
	EndTime      time.Time // When the pass ended
	ScannedCount int       // Number of captures listed
	ExpiredCount int       // Number of captures older than MaxAge
	DeletedCount int       // Number of captures deleted
	FailedCount  int       // Number of captures that failed to delete
}

// Duration returns the total pass duration.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Summary returns a human-readable summary of the pass.
func (s *Stats) Summary() string {
	return fmt.Sprintf("scanned=%d expired=%d deleted=%d failed=%d duration=%s",
		s.ScannedCount, s.ExpiredCount, s.DeletedCount, s.FailedCount, s.Duration())
}
