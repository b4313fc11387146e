package avrcp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedArrays() *FolderItemArrays {
	return &FolderItemArrays{
		Status:       StatusNoError,
		UIDCounter:   1,
		ItemTypes:    []uint8{TagFolder, TagMedia},
		UIDs:         []uint64{42, 7},
		Types:        []uint8{FolderTypeMixed, MediaTypeAudio},
		Playable:     []bool{true, true},
		DisplayNames: []string{"Albums", "Song A"},
		AttrCounts:   []uint8{0, 1},
		AttrIDs:      []uint32{AttrTitle},
		AttrValues:   []string{"Artist X"},
	}
}

func TestFromArrays(t *testing.T) {
	c := DefaultCodec()

	t.Run("BuildsList", func(t *testing.T) {
		list, err := c.FromArrays(mixedArrays())
		require.NoError(t, err)
		assert.Equal(t, mixedList(), list)
	})

	t.Run("ToArraysInverts", func(t *testing.T) {
		a, err := c.ToArrays(mixedList())
		require.NoError(t, err)
		assert.Equal(t, mixedArrays(), a)
	})

	t.Run("PerItemLengthMismatch", func(t *testing.T) {
		a := mixedArrays()
		a.UIDs = a.UIDs[:1]

		_, err := c.FromArrays(a)
		assert.True(t, errors.Is(err, ErrArrayLengthMismatch))
	})

	t.Run("AttributeSumMismatch", func(t *testing.T) {
		a := mixedArrays()
		a.AttrIDs = append(a.AttrIDs, AttrArtist)
		a.AttrValues = append(a.AttrValues, "extra")

		_, err := c.FromArrays(a)
		assert.True(t, errors.Is(err, ErrArrayLengthMismatch))
	})

	t.Run("MissingAttributes", func(t *testing.T) {
		a := mixedArrays()
		a.AttrCounts[1] = 2

		_, err := c.FromArrays(a)
		assert.True(t, errors.Is(err, ErrArrayLengthMismatch))
	})

	t.Run("UnknownItemType", func(t *testing.T) {
		a := mixedArrays()
		a.ItemTypes[0] = TagPlayer

		_, err := c.FromArrays(a)
		assert.True(t, errors.Is(err, ErrUnknownItemTag))
	})

	t.Run("PlayersHaveNoArrayForm", func(t *testing.T) {
		_, err := c.ToArrays(NewPlayerList(StatusNoError, 0, PlayerItem{}))
		assert.True(t, errors.Is(err, ErrUnknownItemTag))
	})
}
