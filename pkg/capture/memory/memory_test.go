package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marmos91/avrcpbrowse/pkg/capture"
	capturetesting "github.com/marmos91/avrcpbrowse/pkg/capture/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	suite := &capturetesting.StoreTestSuite{
		NewStore: func(t *testing.T) capture.Store {
			return New(Config{})
		},
	}
	suite.Run(t)
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	store := New(Config{MaxCaptures: 2})

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var ids []*capture.Capture
	for i := 0; i < 3; i++ {
		c := &capture.Capture{
			Kind:       capture.KindFolderItems,
			Direction:  capture.Inbound,
			CapturedAt: base.Add(time.Duration(i) * time.Second),
			Outcome:    capture.OutcomeOK,
		}
		require.NoError(t, store.Put(ctx, c))
		ids = append(ids, c)
	}

	_, err := store.Get(ctx, ids[0].ID)
	assert.True(t, errors.Is(err, capture.ErrCaptureNotFound))

	list, err := store.List(ctx, capture.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2].ID, list[0].ID)
	assert.Equal(t, ids[1].ID, list[1].ID)
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	store := New(Config{})
	require.NoError(t, store.Close())

	err := store.Put(ctx, &capture.Capture{Kind: capture.KindSettingIDs, Direction: capture.Outbound})
	assert.True(t, errors.Is(err, capture.ErrStoreClosed))

	_, err = store.List(ctx, capture.ListOptions{})
	assert.True(t, errors.Is(err, capture.ErrStoreClosed))
}

type recordingMetrics struct {
	ops []string
}

func (m *recordingMetrics) RecordOperation(op string, _ time.Duration, _ error) {
	m.ops = append(m.ops, op)
}

func TestMemoryStore_RecordsMetrics(t *testing.T) {
	ctx := context.Background()
	m := &recordingMetrics{}
	store := New(Config{Metrics: m})

	c := &capture.Capture{Kind: capture.KindSettingPairs, Direction: capture.Inbound}
	require.NoError(t, store.Put(ctx, c))
	_, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, c.ID))

	assert.Equal(t, []string{"put", "get", "delete"}, m.ops)
}
