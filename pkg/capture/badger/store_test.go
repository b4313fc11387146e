package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	capturetesting "github.com/marmos91/avrcpbrowse/pkg/capture/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerStore(t *testing.T) {
	suite := &capturetesting.StoreTestSuite{
		NewStore: func(t *testing.T) capture.Store {
			store, err := New(context.Background(), Config{InMemory: true})
			require.NoError(t, err)
			return store
		},
	}
	suite.Run(t)
}

func TestBadgerStore_Persists(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "captures")

	store, err := New(ctx, Config{DBPath: dir})
	require.NoError(t, err)

	c := &capture.Capture{
		Kind:       capture.KindFolderItems,
		Direction:  capture.Inbound,
		CapturedAt: time.Date(2024, 5, 1, 10, 0, 0, 123, time.UTC),
		Payload:    []byte{0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		Outcome:    "TruncatedRecord",
	}
	require.NoError(t, store.Put(ctx, c))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, Config{DBPath: dir})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Payload, got.Payload)
	assert.Equal(t, "TruncatedRecord", got.Outcome)
	assert.True(t, c.CapturedAt.Equal(got.CapturedAt))
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestSerialization_RoundTrip(t *testing.T) {
	c := &capture.Capture{
		ID:          uuid.MustParse("0b3c6f1e-8a8e-4c55-9d0a-5f6b1f0a2c11"),
		Kind:        capture.KindFolderItems,
		Direction:   capture.Outbound,
		CapturedAt:  time.Date(2024, 5, 1, 10, 0, 0, 42, time.UTC),
		Payload:     []byte{0x04, 0x01, 0x00},
		ItemLengths: []uint32{21, 37},
		Outcome:     capture.OutcomeOK,
		Note:        "golden",
	}

	data, err := encodeCapture(c)
	require.NoError(t, err)

	got, err := decodeCapture(data)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestSerialization_EmptyFieldsDecodeNil(t *testing.T) {
	c := &capture.Capture{
		ID:         uuid.New(),
		Kind:       capture.KindSettingIDs,
		Direction:  capture.Inbound,
		CapturedAt: time.Unix(0, 0).UTC(),
	}

	data, err := encodeCapture(c)
	require.NoError(t, err)

	got, err := decodeCapture(data)
	require.NoError(t, err)
	assert.Nil(t, got.Payload)
	assert.Nil(t, got.ItemLengths)
}

func TestSerialization_RejectsGarbage(t *testing.T) {
	_, err := decodeCapture([]byte{0x00, 0x00})
	assert.Error(t, err)
}

func TestTimeKey_Order(t *testing.T) {
	id := uuid.New()
	early := timeKey(time.Unix(10, 0), id)
	late := timeKey(time.Unix(11, 0), id)
	assert.Less(t, string(early), string(late))

	parsed, err := idFromTimeKey(late)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}
