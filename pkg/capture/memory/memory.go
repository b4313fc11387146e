// Package memory provides an in-memory capture store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/marmos91/avrcpbrowse/pkg/metrics"
)

// Config configures a memory store.
type Config struct {
	// MaxCaptures bounds the number of stored captures. When full, the
	// oldest capture is evicted. 0 means unlimited.
	MaxCaptures int `mapstructure:"max_captures"`

	// Metrics receives operation timings. Nil disables metrics.
	Metrics metrics.CaptureMetrics `mapstructure:"-"`
}

// Store keeps captures in a map. It is intended for tests and for short
// CLI sessions that do not need persistence.
type Store struct {
	mu       sync.RWMutex
	captures map[uuid.UUID]*capture.Capture
	closed   bool

	maxCaptures int
	metrics     metrics.CaptureMetrics
	now         func() time.Time
}

// New creates an empty memory store.
func New(cfg Config) *Store {
	m := cfg.Metrics
	if m == nil {
		m = metrics.NewNoopCaptureMetrics()
	}

	return &Store{
		captures:    make(map[uuid.UUID]*capture.Capture),
		maxCaptures: cfg.MaxCaptures,
		metrics:     m,
		now:         time.Now,
	}
}

func (s *Store) Put(ctx context.Context, c *capture.Capture) (err error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperation("put", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := capture.Prepare(c, s.now); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return capture.ErrStoreClosed
	}

	s.captures[c.ID] = capture.Clone(c)

	if s.maxCaptures > 0 && len(s.captures) > s.maxCaptures {
		s.evictOldestLocked()
	}
	return nil
}

func (s *Store) evictOldestLocked() {
	var (
		oldest   uuid.UUID
		oldestAt time.Time
		found    bool
	)
	for id, c := range s.captures {
		if !found || c.CapturedAt.Before(oldestAt) {
			oldest, oldestAt, found = id, c.CapturedAt, true
		}
	}
	if found {
		delete(s.captures, oldest)
	}
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (c *capture.Capture, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperation("get", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, capture.ErrStoreClosed
	}

	stored, ok := s.captures[id]
	if !ok {
		return nil, fmt.Errorf("capture %s: %w", id, capture.ErrCaptureNotFound)
	}
	return capture.Clone(stored), nil
}

func (s *Store) List(ctx context.Context, opts capture.ListOptions) (out []*capture.Capture, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperation("list", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, capture.ErrStoreClosed
	}

	out = make([]*capture.Capture, 0, len(s.captures))
	for _, c := range s.captures {
		if opts.Kind != "" && c.Kind != opts.Kind {
			continue
		}
		out = append(out, capture.Clone(c))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CapturedAt.Equal(out[j].CapturedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CapturedAt.After(out[j].CapturedAt)
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperation("delete", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return capture.ErrStoreClosed
	}
	if _, ok := s.captures[id]; !ok {
		return fmt.Errorf("capture %s: %w", id, capture.ErrCaptureNotFound)
	}
	delete(s.captures, id)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.captures = nil
	return nil
}
