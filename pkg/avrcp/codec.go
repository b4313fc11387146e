// Package avrcp implements the AVRCP browsing payload codec: the folder item
// list exchanged on the "get folder items" and "get media player list"
// paths, plus the companion attribute and text lists the native Bluetooth
// stack exchanges with the service layer.
//
// The codec is a pure, stateless transform. Encode and Decode perform no
// I/O, hold no locks and never retain the buffers they are given, so a
// single Codec may be shared by any number of goroutines.
//
// Wire Format:
// All multi-byte integers are little-endian. Strings are framed as
// [charset_id:uint16][length:uint16][bytes] with no terminator.
//
//	header : status(1) uid_counter(4) item_count(4)
//	player : tag(1)=0x00 player_id(2) major_type(1) sub_type(4) play_status(1) features(16) name
//	folder : tag(1)=0x01 uid(8) folder_type(1) playable(1) name
//	media  : tag(1)=0x02 uid(8) media_type(1) name attr_count(1) { attr_id(4) value }*
//
// Every read is validated against the remaining buffer; decode either
// returns a complete value or a *CodecError, never a partial result.
package avrcp

import "fmt"

// UTF8Policy controls validation of UTF-8 tagged strings on decode.
type UTF8Policy string

const (
	// UTF8Strict rejects invalid UTF-8 with ErrInvalidUTF8.
	UTF8Strict UTF8Policy = "strict"

	// UTF8Permissive passes the raw bytes through unchanged.
	UTF8Permissive UTF8Policy = "permissive"
)

// Options configures a Codec. Zero values select the defaults.
type Options struct {
	// MaxAttributes caps media element attribute lists and element/setting
	// text lists. Default: DefaultMaxAttributes (7).
	MaxAttributes int `mapstructure:"max_attributes" yaml:"max_attributes" validate:"gte=0,lte=255"`

	// MaxTextLength caps element attribute and setting text values in
	// bytes. Default: DefaultMaxTextLength (254).
	MaxTextLength int `mapstructure:"max_text_length" yaml:"max_text_length" validate:"gte=0,lte=65535"`

	// UTF8Policy selects decode-time UTF-8 validation. Default: strict.
	UTF8Policy UTF8Policy `mapstructure:"utf8_policy" yaml:"utf8_policy" validate:"omitempty,oneof=strict permissive"`

	// AllowTrailingBytes accepts unread bytes after the last item instead
	// of failing with ErrTrailingBytes.
	AllowTrailingBytes bool `mapstructure:"allow_trailing_bytes" yaml:"allow_trailing_bytes"`
}

func (o *Options) applyDefaults() {
	if o.MaxAttributes == 0 {
		o.MaxAttributes = DefaultMaxAttributes
	}
	if o.MaxTextLength == 0 {
		o.MaxTextLength = DefaultMaxTextLength
	}
	if o.UTF8Policy == "" {
		o.UTF8Policy = UTF8Strict
	}
}

// Codec encodes and decodes browsing payloads under a fixed set of Options.
type Codec struct {
	opts Options
}

// NewCodec returns a Codec with opts, defaults applied.
func NewCodec(opts Options) (*Codec, error) {
	opts.applyDefaults()

	if opts.MaxAttributes > 255 {
		return nil, fmt.Errorf("max_attributes %d does not fit the 1-byte count field", opts.MaxAttributes)
	}
	if opts.MaxTextLength > MaxStringLength {
		return nil, fmt.Errorf("max_text_length %d exceeds %d", opts.MaxTextLength, MaxStringLength)
	}
	switch opts.UTF8Policy {
	case UTF8Strict, UTF8Permissive:
	default:
		return nil, fmt.Errorf("unknown utf8 policy %q", opts.UTF8Policy)
	}

	return &Codec{opts: opts}, nil
}

// Options returns the effective options.
func (c *Codec) Options() Options {
	return c.opts
}

var defaultCodec = mustCodec(Options{})

func mustCodec(opts Options) *Codec {
	c, err := NewCodec(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCodec returns the codec used by the package-level functions.
func DefaultCodec() *Codec {
	return defaultCodec
}

// Encode serializes a folder item list with the default options.
func Encode(list *FolderItemList) ([]byte, error) {
	return defaultCodec.EncodeFolderItems(list)
}

// Decode parses a folder item list with the default options.
func Decode(b []byte) (*FolderItemList, error) {
	return defaultCodec.DecodeFolderItems(b)
}
