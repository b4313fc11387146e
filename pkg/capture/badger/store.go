// Package badger provides a persistent capture store backed by BadgerDB.
package badger

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/marmos91/avrcpbrowse/pkg/metrics"
)

// Key Namespace
// =============
//
// Prefix   Key Format                      Value
// ==============================================================
// "c:"     c:<uuid>                        capture record (XDR)
// "t:"     t:<nanos, 16 hex>:<uuid>        empty (time index)
//
// The time index sorts lexicographically by capture time, so List walks it
// in reverse to return captures newest first without loading every record.

const (
	prefixCapture = "c:"
	prefixTime    = "t:"
)

func captureKey(id uuid.UUID) []byte {
	return []byte(prefixCapture + id.String())
}

func timeKey(at time.Time, id uuid.UUID) []byte {
	var nanos [8]byte
	binary.BigEndian.PutUint64(nanos[:], uint64(at.UnixNano()))
	return []byte(prefixTime + hex.EncodeToString(nanos[:]) + ":" + id.String())
}

// idFromTimeKey extracts the capture id from a time index key.
func idFromTimeKey(key []byte) (uuid.UUID, error) {
	const idOffset = len(prefixTime) + 16 + 1
	if len(key) <= idOffset {
		return uuid.Nil, fmt.Errorf("malformed time key %q", key)
	}
	return uuid.Parse(string(key[idOffset:]))
}

// Config contains configuration for a BadgerDB capture store.
type Config struct {
	// DBPath is the directory where BadgerDB will store its files
	DBPath string `mapstructure:"db_path"`

	// Retention expires captures after the given duration. 0 keeps them
	// until deleted.
	Retention time.Duration `mapstructure:"retention"`

	// InMemory runs BadgerDB without touching disk (DBPath is ignored)
	InMemory bool `mapstructure:"in_memory"`

	// Metrics receives operation timings. Nil disables metrics.
	Metrics metrics.CaptureMetrics `mapstructure:"-"`
}

// Store is a capture.Store backed by BadgerDB.
type Store struct {
	db        *badger.DB
	retention time.Duration
	metrics   metrics.CaptureMetrics
	now       func() time.Time
}

// New opens (or creates) a BadgerDB capture store.
//
// Parameters:
//   - ctx: Context for cancellation during open
//   - cfg: Database path, retention and metrics
//
// Returns:
//   - *Store: A store ready for use
//   - error: Error if the database cannot be opened
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.DBPath == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger capture store: db_path is required")
	}

	opts := badger.DefaultOptions(cfg.DBPath)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLoggingLevel(badger.WARNING) // Reduce log noise
	opts = opts.WithCompression(options.None)    // Payloads are small and mostly incompressible

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.DBPath, err)
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.NewNoopCaptureMetrics()
	}

	return &Store{
		db:        db,
		retention: cfg.Retention,
		metrics:   m,
		now:       time.Now,
	}, nil
}

func (s *Store) entry(key, value []byte) *badger.Entry {
	e := badger.NewEntry(key, value)
	if s.retention > 0 {
		e = e.WithTTL(s.retention)
	}
	return e
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

	value, err := encodeCapture(c)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		// Replacing a capture must drop its old time index entry.
		if old, err := getCapture(txn, c.ID); err == nil {
			if err := txn.Delete(timeKey(old.CapturedAt, old.ID)); err != nil {
				return err
			}
		} else if !errors.Is(err, capture.ErrCaptureNotFound) {
			return err
		}

		if err := txn.SetEntry(s.entry(captureKey(c.ID), value)); err != nil {
			return fmt.Errorf("failed to store capture %s: %w", c.ID, err)
		}
		return txn.SetEntry(s.entry(timeKey(c.CapturedAt, c.ID), nil))
	})
}

func getCapture(txn *badger.Txn, id uuid.UUID) (*capture.Capture, error) {
	item, err := txn.Get(captureKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("capture %s: %w", id, capture.ErrCaptureNotFound)
	}
	if err != nil {
		return nil, err
	}

	var c *capture.Capture
	err = item.Value(func(val []byte) error {
		var decodeErr error
		c, decodeErr = decodeCapture(val)
		return decodeErr
	})
	return c, err
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (c *capture.Capture, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperation("get", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		var getErr error
		c, getErr = getCapture(txn, id)
		return getErr
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) List(ctx context.Context, opts capture.ListOptions) (out []*capture.Capture, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperation("list", time.Since(start), err) }()

	out = []*capture.Capture{}

	err = s.db.View(func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		itOpts.Reverse = true
		itOpts.PrefetchValues = false
		itOpts.Prefix = []byte(prefixTime)

		it := txn.NewIterator(itOpts)
		defer it.Close()

		// In reverse mode Seek lands on the largest key <= the seek key.
		for it.Seek([]byte(prefixTime + "\xff")); it.ValidForPrefix([]byte(prefixTime)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			id, err := idFromTimeKey(it.Item().KeyCopy(nil))
			if err != nil {
				return err
			}

			c, err := getCapture(txn, id)
			if err != nil {
				return fmt.Errorf("time index references %s: %w", id, err)
			}
			if opts.Kind != "" && c.Kind != opts.Kind {
				continue
			}

			out = append(out, c)
			if opts.Limit > 0 && len(out) >= opts.Limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperation("delete", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		c, err := getCapture(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(timeKey(c.CapturedAt, id)); err != nil {
			return err
		}
		return txn.Delete(captureKey(id))
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}
