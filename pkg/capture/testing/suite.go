// Package testing provides a reusable conformance suite for capture.Store
// implementations.
package testing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreTestSuite tests the capture.Store contract, not implementation
// details, so it runs unchanged against every backend.
//
// Usage:
//
//	func TestMyStore(t *testing.T) {
//	    suite := &capturetesting.StoreTestSuite{
//	        NewStore: func(t *testing.T) capture.Store {
//	            return mystore.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore creates a fresh, empty store for each test.
	NewStore func(t *testing.T) capture.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("PutGet", suite.testPutGet)
	t.Run("PutAssignsIdentity", suite.testPutAssignsIdentity)
	t.Run("PutRejectsInvalid", suite.testPutRejectsInvalid)
	t.Run("PutReplaces", suite.testPutReplaces)
	t.Run("GetNotFound", suite.testGetNotFound)
	t.Run("ListNewestFirst", suite.testListNewestFirst)
	t.Run("ListFilterAndLimit", suite.testListFilterAndLimit)
	t.Run("Delete", suite.testDelete)
	t.Run("Isolation", suite.testIsolation)
	t.Run("Concurrent", suite.testConcurrent)
	t.Run("CancelledContext", suite.testCancelledContext)
}

func (suite *StoreTestSuite) newStore(t *testing.T) capture.Store {
	t.Helper()
	store := suite.NewStore(t)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

var baseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func sample(kind capture.Kind, offset time.Duration) *capture.Capture {
	return &capture.Capture{
		Kind:        kind,
		Direction:   capture.Inbound,
		CapturedAt:  baseTime.Add(offset),
		Payload:     []byte{0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		ItemLengths: []uint32{21, 37},
		Outcome:     capture.OutcomeOK,
		Note:        fmt.Sprintf("%s at %s", kind, offset),
	}
}

// assertSame compares captures field by field; times are compared with
// Equal since backends may differ in location and monotonic readings.
func assertSame(t *testing.T, want, got *capture.Capture) {
	t.Helper()

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Kind, got.Kind)
	assert.Equal(t, want.Direction, got.Direction)
	assert.True(t, want.CapturedAt.Equal(got.CapturedAt), "captured_at %s != %s", want.CapturedAt, got.CapturedAt)
	assert.Equal(t, want.Payload, got.Payload)
	assert.Equal(t, want.ItemLengths, got.ItemLengths)
	assert.Equal(t, want.Outcome, got.Outcome)
	assert.Equal(t, want.Note, got.Note)
}

func (suite *StoreTestSuite) testPutGet(t *testing.T) {
	ctx := context.Background()
	store := suite.newStore(t)

	c := sample(capture.KindFolderItems, 0)
	require.NoError(t, store.Put(ctx, c))

	got, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	assertSame(t, c, got)
}

func (suite *StoreTestSuite) testPutAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	store := suite.newStore(t)

	c := sample(capture.KindElementAttributes, 0)
	c.CapturedAt = time.Time{}
	c.ItemLengths = nil

	require.NoError(t, store.Put(ctx, c))
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.False(t, c.CapturedAt.IsZero())

	got, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	assertSame(t, c, got)
	assert.Nil(t, got.ItemLengths)
}

func (suite *StoreTestSuite) testPutRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := suite.newStore(t)

	badKind := sample("bogus", 0)
	assert.True(t, errors.Is(store.Put(ctx, badKind), capture.ErrInvalidCapture))

	badDirection := sample(capture.KindFolderItems, 0)
	badDirection.Direction = "sideways"
	assert.True(t, errors.Is(store.Put(ctx, badDirection), capture.ErrInvalidCapture))

	assert.True(t, errors.Is(store.Put(ctx, nil), capture.ErrInvalidCapture))
}

func (suite *StoreTestSuite) testPutReplaces(t *testing.T) {
	ctx := context.Background()
	store := suite.newStore(t)

	c := sample(capture.KindFolderItems, 0)
	require.NoError(t, store.Put(ctx, c))

	c.Outcome = "TruncatedRecord"
	c.CapturedAt = baseTime.Add(time.Hour)
	require.NoError(t, store.Put(ctx, c))

	list, err := store.List(ctx, capture.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assertSame(t, c, list[0])
}

func (suite *StoreTestSuite) testGetNotFound(t *testing.T) {
	store := suite.newStore(t)

	_, err := store.Get(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, capture.ErrCaptureNotFound))
}

func (suite *StoreTestSuite) testListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := suite.newStore(t)

	empty, err := store.List(ctx, capture.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, offset := range []time.Duration{2 * time.Second, 0, 5 * time.Second, time.Second} {
		require.NoError(t, store.Put(ctx, sample(capture.KindFolderItems, offset)))
	}

	list, err := store.List(ctx, capture.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 4)

	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].CapturedAt.After(list[i].CapturedAt),
			"entry %d (%s) not newer than entry %d (%s)", i-1, list[i-1].CapturedAt, i, list[i].CapturedAt)
	}
}

func (suite *StoreTestSuite) testListFilterAndLimit(t *testing.T) {
	ctx := context.Background()
	store := suite.newStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Put(ctx, sample(capture.KindFolderItems, time.Duration(i)*time.Second)))
		require.NoError(t, store.Put(ctx, sample(capture.KindSettingPairs, time.Duration(i)*time.Second+time.Millisecond)))
	}

	pairs, err := store.List(ctx, capture.ListOptions{Kind: capture.KindSettingPairs})
	require.NoError(t, err)
	assert.Len(t, pairs, 3)
	for _, c := range pairs {
		assert.Equal(t, capture.KindSettingPairs, c.Kind)
	}

	limited, err := store.List(ctx, capture.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.True(t, limited[0].CapturedAt.Equal(baseTime.Add(2*time.Second+time.Millisecond)))
}

func (suite *StoreTestSuite) testDelete(t *testing.T) {
	ctx := context.Background()
	store := suite.newStore(t)

	c := sample(capture.KindPlayerList, 0)
	require.NoError(t, store.Put(ctx, c))
	require.NoError(t, store.Delete(ctx, c.ID))

	_, err := store.Get(ctx, c.ID)
	assert.True(t, errors.Is(err, capture.ErrCaptureNotFound))

	list, err := store.List(ctx, capture.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.True(t, errors.Is(store.Delete(ctx, c.ID), capture.ErrCaptureNotFound))
}

func (suite *StoreTestSuite) testIsolation(t *testing.T) {
	ctx := context.Background()
	store := suite.newStore(t)

	c := sample(capture.KindFolderItems, 0)
	require.NoError(t, store.Put(ctx, c))
	c.Payload[0] = 0xff

	got, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, byte(0x04), got.Payload[0])

	got.Payload[0] = 0xee
	again, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, byte(0x04), again.Payload[0])
}

func (suite *StoreTestSuite) testConcurrent(t *testing.T) {
	ctx := context.Background()
	store := suite.newStore(t)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := store.Put(ctx, sample(capture.KindFolderItems, time.Duration(i)*time.Millisecond)); err != nil {
				errs <- err
				return
			}
			if _, err := store.List(ctx, capture.ListOptions{Limit: 1}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	list, err := store.List(ctx, capture.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, list, writers)
}

func (suite *StoreTestSuite) testCancelledContext(t *testing.T) {
	store := suite.newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Put(ctx, sample(capture.KindFolderItems, 0))
	assert.True(t, errors.Is(err, context.Canceled))
}
