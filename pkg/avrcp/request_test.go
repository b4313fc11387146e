package avrcp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderItemsRequest(t *testing.T) {
	c := DefaultCodec()

	t.Run("RoundTrip", func(t *testing.T) {
		req := &FolderItemsRequest{Scope: ScopeFileSystem, StartItem: 0, EndItem: 9, Size: 512}

		b, err := c.EncodeFolderItemsRequest(req)
		require.NoError(t, err)
		assert.Equal(t, []byte{
			0x01,
			0x00, 0x00, 0x00, 0x00,
			0x09, 0x00, 0x00, 0x00,
			0x00, 0x02, 0x00, 0x00,
		}, b)

		got, err := c.DecodeFolderItemsRequest(b)
		require.NoError(t, err)
		assert.Equal(t, req, got)
		assert.Equal(t, uint64(10), got.ItemCount())
	})

	t.Run("UnknownScope", func(t *testing.T) {
		_, err := c.DecodeFolderItemsRequest([]byte{0x04, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
		assert.True(t, errors.Is(err, ErrUnknownScope))

		_, err = c.EncodeFolderItemsRequest(&FolderItemsRequest{Scope: 0x10})
		assert.True(t, errors.Is(err, ErrUnknownScope))
	})

	t.Run("InvalidRange", func(t *testing.T) {
		req := &FolderItemsRequest{Scope: ScopeNowPlaying, StartItem: 5, EndItem: 4}
		assert.True(t, errors.Is(req.Validate(), ErrInvalidRange))
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := c.DecodeFolderItemsRequest([]byte{0x01, 0x00, 0x00})
		assert.True(t, errors.Is(err, ErrTruncatedRecord))
	})
}

func TestFolderItemsRequestWindow(t *testing.T) {
	items := mixedList().Items

	tests := []struct {
		name       string
		start, end uint32
		want       int
	}{
		{name: "All", start: 0, end: 1, want: 2},
		{name: "ClampedEnd", start: 1, end: 100, want: 1},
		{name: "PastEnd", start: 5, end: 10, want: 0},
		{name: "MaxEnd", start: 0, end: 0xffffffff, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &FolderItemsRequest{StartItem: tt.start, EndItem: tt.end}
			got := req.Window(items)
			assert.Len(t, got, tt.want)
			assert.NotNil(t, got)
		})
	}
}
