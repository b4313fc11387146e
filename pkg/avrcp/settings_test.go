package avrcp

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingPairsFromFlat(t *testing.T) {
	tests := []struct {
		name    string
		flat    []byte
		want    []SettingPair
		wantErr bool
	}{
		{name: "Empty", flat: []byte{}, want: []SettingPair{}},
		{name: "TwoPairs", flat: []byte{0x02, 0x01, 0x03, 0x02}, want: []SettingPair{{AttrID: 2, Value: 1}, {AttrID: 3, Value: 2}}},
		{name: "OddLength", flat: []byte{0x02, 0x01, 0x03}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SettingPairsFromFlat(tt.flat)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedPairList))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.flat, FlattenSettingPairs(got))
		})
	}
}

func TestSettingLists(t *testing.T) {
	c := DefaultCodec()

	t.Run("IDs", func(t *testing.T) {
		b, err := c.EncodeSettingIDs([]uint8{0x01, 0x02, 0x03})
		require.NoError(t, err)
		assert.Equal(t, []byte{0x03, 0x01, 0x02, 0x03}, b)

		got, err := c.DecodeSettingIDs(b)
		require.NoError(t, err)
		assert.Equal(t, []uint8{0x01, 0x02, 0x03}, got)
	})

	t.Run("Values", func(t *testing.T) {
		b, err := c.EncodeSettingValues([]uint8{0x01, 0x02})
		require.NoError(t, err)

		got, err := c.DecodeSettingValues(b)
		require.NoError(t, err)
		assert.Equal(t, []uint8{0x01, 0x02}, got)
	})

	t.Run("TooManyIDs", func(t *testing.T) {
		_, err := c.EncodeSettingIDs(make([]uint8, MaxAppAttributes+1))
		assert.True(t, errors.Is(err, ErrAttributeCountExceeded))

		_, err = c.DecodeSettingIDs([]byte{MaxAppAttributes + 1})
		assert.True(t, errors.Is(err, ErrAttributeCountExceeded))
	})

	t.Run("TruncatedIDs", func(t *testing.T) {
		_, err := c.DecodeSettingIDs([]byte{0x03, 0x01})
		assert.True(t, errors.Is(err, ErrTruncatedRecord))
	})

	t.Run("Pairs", func(t *testing.T) {
		pairs := []SettingPair{{AttrID: 0x02, Value: 0x02}, {AttrID: 0x03, Value: 0x01}}

		b, err := c.EncodeSettingPairs(pairs)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x02, 0x02, 0x02, 0x03, 0x01}, b)

		got, err := c.DecodeSettingPairs(b)
		require.NoError(t, err)
		assert.Equal(t, pairs, got)
	})

	t.Run("TruncatedPairs", func(t *testing.T) {
		_, err := c.DecodeSettingPairs([]byte{0x02, 0x02, 0x02, 0x03})
		assert.True(t, errors.Is(err, ErrTruncatedRecord))
	})
}

func TestSettingTexts(t *testing.T) {
	c := DefaultCodec()

	t.Run("RoundTrip", func(t *testing.T) {
		texts := []SettingText{
			{ID: 0x02, Text: UTF8("Repeat")},
			{ID: 0x03, Text: UTF8("Shuffle")},
		}

		b, err := c.EncodeSettingTexts(texts)
		require.NoError(t, err)

		got, err := c.DecodeSettingTexts(b)
		require.NoError(t, err)
		assert.Equal(t, texts, got)
	})

	t.Run("TextTooLong", func(t *testing.T) {
		texts := []SettingText{{ID: 0x01, Text: UTF8(strings.Repeat("x", DefaultMaxTextLength+1))}}

		_, err := c.EncodeSettingTexts(texts)
		assert.True(t, errors.Is(err, ErrStringTooLong))
	})

	t.Run("ConfiguredTextLimit", func(t *testing.T) {
		small, err := NewCodec(Options{MaxTextLength: 4})
		require.NoError(t, err)

		_, err = small.EncodeSettingTexts([]SettingText{{ID: 1, Text: UTF8("Equalizer")}})
		assert.True(t, errors.Is(err, ErrStringTooLong))

		_, err = small.EncodeSettingTexts([]SettingText{{ID: 1, Text: UTF8("Off")}})
		assert.NoError(t, err)
	})

	t.Run("TooMany", func(t *testing.T) {
		_, err := c.EncodeSettingTexts(make([]SettingText, DefaultMaxAttributes+1))
		assert.True(t, errors.Is(err, ErrAttributeCountExceeded))
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		b := []byte{0x01, 0x01, 0x6a, 0x00, 0x01, 0x00, 0xff}

		_, err := c.DecodeSettingTexts(b)
		assert.True(t, errors.Is(err, ErrInvalidUTF8))
	})
}
