package avrcp

import (
	"bytes"
	"fmt"

	"github.com/marmos91/avrcpbrowse/internal/protocol/avrcp/wire"
)

const (
	opEncodeElementAttrs = "encode element attributes"
	opDecodeElementAttrs = "decode element attributes"
)

// EncodeElementAttributes serializes a get element attributes response:
//
//	count(1) { attr_id(4) charset(2) length(2) value }*
//
// At most MaxAttributes entries are allowed and each value is limited to
// MaxTextLength bytes. Values are never truncated; an oversized value fails
// with ErrStringTooLong.
func (c *Codec) EncodeElementAttributes(attrs []Attribute) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := c.encodeAttributeList(buf, opEncodeElementAttrs, "attributes", attrs, c.opts.MaxTextLength); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeElementAttributes parses a get element attributes response.
func (c *Codec) DecodeElementAttributes(b []byte) ([]Attribute, error) {
	r := wire.NewReader(b)

	attrs, err := c.decodeAttributeList(r, opDecodeElementAttrs, "attributes")
	if err != nil {
		return nil, err
	}

	if err := c.checkTrailing(r, opDecodeElementAttrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (c *Codec) encodeAttributeList(buf *bytes.Buffer, op, field string, attrs []Attribute, textLimit int) error {
	if len(attrs) > c.opts.MaxAttributes {
		return newError(ErrKindAttributeCountExceeded, op, field, buf.Len(),
			"%d attributes, maximum %d", len(attrs), c.opts.MaxAttributes)
	}

	_ = wire.WriteUint8(buf, uint8(len(attrs)))
	for i, a := range attrs {
		_ = wire.WriteUint32(buf, a.ID)
		if err := encodeText(buf, op, fmt.Sprintf("%s[%d]", field, i), a.Value, textLimit); err != nil {
			return err
		}
	}
	return nil
}

// decodeAttributeList reads count(1) followed by count (id, text) pairs.
// A zero count yields a nil slice.
func (c *Codec) decodeAttributeList(r *wire.Reader, op, field string) ([]Attribute, error) {
	start := r.Offset()
	count, err := r.Uint8(field + ".count")
	if err != nil {
		return nil, readFailure(op, field+".count", err)
	}

	if int(count) > c.opts.MaxAttributes {
		return nil, newError(ErrKindAttributeCountExceeded, op, field, start,
			"%d attributes, maximum %d", count, c.opts.MaxAttributes)
	}
	if count == 0 {
		return nil, nil
	}

	attrs := make([]Attribute, 0, count)
	for i := 0; i < int(count); i++ {
		name := fmt.Sprintf("%s[%d]", field, i)

		id, err := r.Uint32(name + ".id")
		if err != nil {
			return nil, readFailure(op, name+".id", err)
		}
		value, err := c.decodeText(r, op, name+".value")
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, Attribute{ID: id, Value: value})
	}
	return attrs, nil
}

// checkTrailing fails if r still holds unread bytes, unless the codec was
// configured to allow them.
func (c *Codec) checkTrailing(r *wire.Reader, op string) error {
	if r.Remaining() == 0 || c.opts.AllowTrailingBytes {
		return nil
	}
	return newError(ErrKindTrailingBytes, op, "", r.Offset(), "%d unread bytes", r.Remaining())
}
