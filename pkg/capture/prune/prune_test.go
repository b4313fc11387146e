package prune

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/marmos91/avrcpbrowse/pkg/capture/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, store capture.Store, age time.Duration, outcome string) *capture.Capture {
	t.Helper()
	c := &capture.Capture{
		Kind:       capture.KindFolderItems,
		Direction:  capture.Inbound,
		CapturedAt: now.Add(-age),
		Payload:    []byte{0x04},
		Outcome:    outcome,
	}
	require.NoError(t, store.Put(context.Background(), c))
	return c
}

func newPruner(t *testing.T, store capture.Store, cfg Config) *Pruner {
	t.Helper()
	p, err := New(store, cfg)
	require.NoError(t, err)
	p.now = func() time.Time { return now }
	return p
}

func remaining(t *testing.T, store capture.Store) int {
	t.Helper()
	list, err := store.List(context.Background(), capture.ListOptions{})
	require.NoError(t, err)
	return len(list)
}

func TestNew(t *testing.T) {
	store := memory.New(memory.Config{})

	_, err := New(store, Config{})
	assert.Error(t, err)

	_, err = New(nil, Config{MaxAge: time.Hour})
	assert.Error(t, err)

	p, err := New(store, Config{MaxAge: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, p.config.Interval)
}

func TestRunNow(t *testing.T) {
	store := memory.New(memory.Config{})
	seed(t, store, 3*time.Hour, capture.OutcomeOK)
	seed(t, store, 2*time.Hour, "TruncatedRecord")
	fresh := seed(t, store, 10*time.Minute, capture.OutcomeOK)

	stats, err := newPruner(t, store, Config{MaxAge: time.Hour}).RunNow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.ScannedCount)
	assert.Equal(t, 2, stats.ExpiredCount)
	assert.Equal(t, 2, stats.DeletedCount)
	assert.Zero(t, stats.FailedCount)
	assert.Contains(t, stats.Summary(), "deleted=2")

	_, err = store.Get(context.Background(), fresh.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, remaining(t, store))
}

func TestRunNow_KeepFailures(t *testing.T) {
	store := memory.New(memory.Config{})
	seed(t, store, 3*time.Hour, capture.OutcomeOK)
	failed := seed(t, store, 2*time.Hour, "InvalidUtf8")

	stats, err := newPruner(t, store, Config{MaxAge: time.Hour, KeepFailures: true}).RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DeletedCount)

	_, err = store.Get(context.Background(), failed.ID)
	assert.NoError(t, err)
}

func TestRunNow_DryRun(t *testing.T) {
	store := memory.New(memory.Config{})
	seed(t, store, 3*time.Hour, capture.OutcomeOK)

	stats, err := newPruner(t, store, Config{MaxAge: time.Hour, DryRun: true}).RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ExpiredCount)
	assert.Zero(t, stats.DeletedCount)
	assert.Equal(t, 1, remaining(t, store))
}

func TestRunNow_ClosedStore(t *testing.T) {
	store := memory.New(memory.Config{})
	require.NoError(t, store.Close())

	_, err := newPruner(t, store, Config{MaxAge: time.Hour}).RunNow(context.Background())
	assert.ErrorIs(t, err, capture.ErrStoreClosed)
}

func TestStartStop(t *testing.T) {
	store := memory.New(memory.Config{})
	seed(t, store, 3*time.Hour, capture.OutcomeOK)

	p := newPruner(t, store, Config{Enabled: true, MaxAge: time.Hour, Interval: 10 * time.Millisecond})
	p.Start()

	assert.Eventually(t, func() bool {
		list, err := store.List(context.Background(), capture.ListOptions{})
		return err == nil && len(list) == 0
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))
}

func TestStartStop_Disabled(t *testing.T) {
	store := memory.New(memory.Config{})
	seed(t, store, 3*time.Hour, capture.OutcomeOK)

	p := newPruner(t, store, Config{MaxAge: time.Hour, Interval: time.Millisecond})
	p.Start()
	require.NoError(t, p.Stop(context.Background()))

	assert.Equal(t, 1, remaining(t, store))
}
