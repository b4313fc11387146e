package avrcp

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodec(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c, err := NewCodec(Options{})
		require.NoError(t, err)

		opts := c.Options()
		assert.Equal(t, DefaultMaxAttributes, opts.MaxAttributes)
		assert.Equal(t, DefaultMaxTextLength, opts.MaxTextLength)
		assert.Equal(t, UTF8Strict, opts.UTF8Policy)
		assert.False(t, opts.AllowTrailingBytes)
	})

	t.Run("RejectsInvalidOptions", func(t *testing.T) {
		tests := []struct {
			name string
			opts Options
		}{
			{name: "MaxAttributes", opts: Options{MaxAttributes: 256}},
			{name: "MaxTextLength", opts: Options{MaxTextLength: MaxStringLength + 1}},
			{name: "Policy", opts: Options{UTF8Policy: "lenient"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewCodec(tt.opts)
				assert.Error(t, err)
			})
		}
	})
}

func TestCodecError(t *testing.T) {
	t.Run("MatchesSentinelByKind", func(t *testing.T) {
		err := newError(ErrKindUnknownItemTag, opDecodeItems, "items[1].tag", 30, "tag 0x%02x", 0xff)

		assert.True(t, errors.Is(err, ErrUnknownItemTag))
		assert.False(t, errors.Is(err, ErrTruncatedRecord))
		assert.Equal(t, "decode folder items: UnknownItemTag (items[1].tag) at offset 30: tag 0xff", err.Error())
	})

	t.Run("SurvivesWrapping", func(t *testing.T) {
		_, err := Decode([]byte{0x00})
		wrapped := fmt.Errorf("handle payload: %w", err)

		assert.True(t, errors.Is(wrapped, ErrTruncatedRecord))
		assert.Equal(t, ErrKindTruncatedRecord, KindOf(wrapped))
	})

	t.Run("KindOfForeignError", func(t *testing.T) {
		assert.Equal(t, ErrorKind(0), KindOf(errors.New("boom")))
		assert.Equal(t, "Unknown", ErrorKind(0).String())
	})
}

func TestItemKindText(t *testing.T) {
	for _, k := range []ItemKind{ItemPlayer, ItemFolder, ItemMedia} {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var got ItemKind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, k, got)
	}

	var k ItemKind
	assert.Error(t, k.UnmarshalText([]byte("playlist")))

	_, err := ItemKind(9).MarshalText()
	assert.Error(t, err)
}

func TestConcurrentUse(t *testing.T) {
	c := DefaultCodec()

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := c.DecodeFolderItems(mixedWire)
			if err != nil {
				errs <- err
				return
			}
			if _, err := c.EncodeFolderItems(list); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
