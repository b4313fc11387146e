package avrcp

import (
	"bytes"
	"unicode/utf8"

	"github.com/marmos91/avrcpbrowse/internal/protocol/avrcp/wire"
)

// encodeText writes t after checking it against limit (in bytes).
func encodeText(buf *bytes.Buffer, op, field string, t Text, limit int) error {
	if len(t.Value) > limit {
		return newError(ErrKindStringTooLong, op, field, buf.Len(), "%d bytes exceeds limit %d", len(t.Value), limit)
	}

	if err := wire.EncodeText(buf, t.charset(), []byte(t.Value)); err != nil {
		return newError(ErrKindStringTooLong, op, field, buf.Len(), "%v", err)
	}
	return nil
}

// decodeText reads a Text and applies the codec's UTF-8 policy.
func (c *Codec) decodeText(r *wire.Reader, op, field string) (Text, error) {
	start := r.Offset()

	charset, data, err := wire.DecodeText(r, field)
	if err != nil {
		return Text{}, readFailure(op, field, err)
	}

	if charset == CharsetUTF8 && c.opts.UTF8Policy == UTF8Strict && !utf8.Valid(data) {
		return Text{}, newError(ErrKindInvalidUTF8, op, field, start, "%d bytes", len(data))
	}

	return Text{CharsetID: charset, Value: string(data)}, nil
}
