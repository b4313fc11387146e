package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// ============================================================================
// Wire Encoding Helpers - Go Values → Wire Format
// ============================================================================

// MaxTextLength is the largest body a 16-bit length prefix can describe.
const MaxTextLength = math.MaxUint16

// WriteUint8 writes a single byte.
func WriteUint8(buf *bytes.Buffer, v uint8) error {
	return buf.WriteByte(v)
}

// WriteBool writes a boolean as 0 or 1.
func WriteBool(buf *bytes.Buffer, v bool) error {
	if v {
		return buf.WriteByte(1)
	}
	return buf.WriteByte(0)
}

// WriteUint16 writes a little-endian 16-bit integer.
func WriteUint16(buf *bytes.Buffer, v uint16) error {
	return binary.Write(buf, binary.LittleEndian, v)
}

// WriteUint32 writes a little-endian 32-bit integer.
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	return binary.Write(buf, binary.LittleEndian, v)
}

// WriteUint64 writes a little-endian 64-bit integer.
func WriteUint64(buf *bytes.Buffer, v uint64) error {
	return binary.Write(buf, binary.LittleEndian, v)
}

// WritePadded writes data into a fixed-width field of size bytes, zero
// padding the remainder.
//
// Callers must check len(data) <= size first; a longer input is rejected
// here rather than truncated.
func WritePadded(buf *bytes.Buffer, data []byte, size int) error {
	if len(data) > size {
		return fmt.Errorf("fixed field overflow: %d bytes into %d", len(data), size)
	}

	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}

	for range size - len(data) {
		if err := buf.WriteByte(0); err != nil {
			return fmt.Errorf("write padding: %w", err)
		}
	}

	return nil
}

// EncodeText writes a length-prefixed string.
//
// Format: [charset_id:uint16][length:uint16][data:length bytes]
//
// The body is not NUL-terminated on the wire. Callers must check
// len(data) <= MaxTextLength first.
func EncodeText(buf *bytes.Buffer, charset uint16, data []byte) error {
	if len(data) > MaxTextLength {
		return fmt.Errorf("text length %d exceeds maximum %d", len(data), MaxTextLength)
	}

	if err := WriteUint16(buf, charset); err != nil {
		return fmt.Errorf("write charset: %w", err)
	}

	if err := WriteUint16(buf, uint16(len(data))); err != nil {
		return fmt.Errorf("write length: %w", err)
	}

	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}

	return nil
}
