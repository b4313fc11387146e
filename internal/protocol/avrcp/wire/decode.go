package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ============================================================================
// Wire Decoding Helpers - Wire Format → Go Values
// ============================================================================

var (
	// ErrShortBuffer indicates a fixed-width field extends past the end of
	// the buffer.
	ErrShortBuffer = errors.New("short buffer")

	// ErrLengthOverflow indicates a length-prefixed field declares more bytes
	// than remain in the buffer.
	ErrLengthOverflow = errors.New("declared length exceeds remaining buffer")
)

// ReadError describes a failed read at a specific cursor position.
//
// Err is always one of ErrShortBuffer or ErrLengthOverflow, so callers can
// classify the failure with errors.Is.
type ReadError struct {
	// Field names the value being read (e.g. "uid_counter", "name")
	Field string

	// Offset is the cursor position where the read started
	Offset int

	// Need is the number of bytes the read required
	Need int

	// Remaining is the number of bytes that were left in the buffer
	Remaining int

	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s at offset %d: need %d bytes, %d remaining: %v",
		e.Field, e.Offset, e.Need, e.Remaining, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Reader is a forward-only cursor over a byte slice.
//
// Every read is validated against the remaining length before the cursor
// advances, so a failed read leaves the cursor where it was. Multi-byte
// integers are little-endian, matching what the native Bluetooth stack
// emits for browsing responses.
//
// A Reader is not safe for concurrent use; create one per decode call.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a cursor positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Offset returns the current cursor position.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// need validates that n bytes are available for a fixed-width field.
func (r *Reader) need(field string, n int) error {
	if n > r.Remaining() {
		return &ReadError{
			Field:     field,
			Offset:    r.off,
			Need:      n,
			Remaining: r.Remaining(),
			Err:       ErrShortBuffer,
		}
	}
	return nil
}

// Uint8 reads a single byte.
func (r *Reader) Uint8(field string) (uint8, error) {
	if err := r.need(field, 1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

// Bool reads a single byte; any non-zero value is true.
func (r *Reader) Bool(field string) (bool, error) {
	v, err := r.Uint8(field)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// Uint16 reads a little-endian 16-bit integer.
func (r *Reader) Uint16(field string) (uint16, error) {
	if err := r.need(field, 2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

// Uint32 reads a little-endian 32-bit integer.
func (r *Reader) Uint32(field string) (uint32, error) {
	if err := r.need(field, 4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

// Uint64 reads a little-endian 64-bit integer.
func (r *Reader) Uint64(field string) (uint64, error) {
	if err := r.need(field, 8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

// Fixed reads exactly n bytes of a fixed-width field and returns a copy.
func (r *Reader) Fixed(field string, n int) ([]byte, error) {
	if err := r.need(field, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.off:r.off+n])
	r.off += n
	return out, nil
}

// Counted reads n bytes whose count came from a length prefix on the wire.
//
// It differs from Fixed only in the error it reports: a declared length
// that runs past the buffer is ErrLengthOverflow rather than ErrShortBuffer.
// The returned slice is a copy; the Reader never hands out views into the
// caller's buffer.
func (r *Reader) Counted(field string, n int) ([]byte, error) {
	if n > r.Remaining() {
		return nil, &ReadError{
			Field:     field,
			Offset:    r.off,
			Need:      n,
			Remaining: r.Remaining(),
			Err:       ErrLengthOverflow,
		}
	}
	out := make([]byte, n)
	copy(out, r.buf[r.off:r.off+n])
	r.off += n
	return out, nil
}

// DecodeText reads a length-prefixed string.
//
// Format: [charset_id:uint16][length:uint16][data:length bytes]
//
// The length header is validated as a fixed-width field; the body is
// validated against the declared length before the cursor moves.
//
// Returns the charset identifier and a copy of the raw bytes. Character
// set validation is left to the caller.
func DecodeText(r *Reader, field string) (uint16, []byte, error) {
	charset, err := r.Uint16(field + ".charset_id")
	if err != nil {
		return 0, nil, err
	}

	length, err := r.Uint16(field + ".length")
	if err != nil {
		return 0, nil, err
	}

	data, err := r.Counted(field, int(length))
	if err != nil {
		return 0, nil, err
	}

	return charset, data, nil
}
