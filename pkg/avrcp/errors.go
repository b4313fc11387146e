package avrcp

import (
	"errors"
	"fmt"

	"github.com/marmos91/avrcpbrowse/internal/protocol/avrcp/wire"
)

// ErrorKind is the category of a codec failure.
//
// Callers (typically the service-layer adapter) branch on the kind to decide
// whether to drop a response or fail the outstanding browsing request.
type ErrorKind int

const (
	// ErrKindTruncatedRecord indicates the buffer ended before the declared
	// number of items (or a fixed-width field) could be read.
	ErrKindTruncatedRecord ErrorKind = iota + 1

	// ErrKindStringLengthOverflow indicates a string's declared length runs
	// past the end of the buffer.
	ErrKindStringLengthOverflow

	// ErrKindStringTooLong indicates a string cannot be represented in its
	// length field or exceeds the configured text limit (encode only).
	ErrKindStringTooLong

	// ErrKindInvalidUTF8 indicates a UTF-8 tagged string holds invalid bytes.
	ErrKindInvalidUTF8

	// ErrKindUnknownItemTag indicates an item type tag outside
	// Player/Folder/MediaElement.
	ErrKindUnknownItemTag

	// ErrKindAttributeCountExceeded indicates an attribute list longer than
	// the configured maximum.
	ErrKindAttributeCountExceeded

	// ErrKindFeatureListOverflow indicates a player feature source longer
	// than the 16-byte bitmask.
	ErrKindFeatureListOverflow

	// ErrKindTrailingBytes indicates unread bytes after the last item.
	ErrKindTrailingBytes

	// ErrKindMalformedPairList indicates an interleaved id/value array with
	// an odd number of entries.
	ErrKindMalformedPairList

	// ErrKindUnknownScope indicates a browse scope outside the known set.
	ErrKindUnknownScope

	// ErrKindInvalidRange indicates a request whose start item is past its
	// end item.
	ErrKindInvalidRange

	// ErrKindArrayLengthMismatch indicates parallel item arrays of
	// different lengths.
	ErrKindArrayLengthMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindTruncatedRecord:
		return "TruncatedRecord"
	case ErrKindStringLengthOverflow:
		return "StringLengthOverflow"
	case ErrKindStringTooLong:
		return "StringTooLong"
	case ErrKindInvalidUTF8:
		return "InvalidUtf8"
	case ErrKindUnknownItemTag:
		return "UnknownItemTag"
	case ErrKindAttributeCountExceeded:
		return "AttributeCountExceeded"
	case ErrKindFeatureListOverflow:
		return "FeatureListOverflow"
	case ErrKindTrailingBytes:
		return "TrailingBytes"
	case ErrKindMalformedPairList:
		return "MalformedPairList"
	case ErrKindUnknownScope:
		return "UnknownScope"
	case ErrKindInvalidRange:
		return "InvalidRange"
	case ErrKindArrayLengthMismatch:
		return "ArrayLengthMismatch"
	default:
		return "Unknown"
	}
}

// Sentinel errors, one per kind. Every *CodecError matches the sentinel of
// its kind under errors.Is:
//
//	list, err := avrcp.Decode(payload)
//	if errors.Is(err, avrcp.ErrTruncatedRecord) {
//	    // drop the response
//	}
var (
	ErrTruncatedRecord        = &CodecError{Kind: ErrKindTruncatedRecord}
	ErrStringLengthOverflow   = &CodecError{Kind: ErrKindStringLengthOverflow}
	ErrStringTooLong          = &CodecError{Kind: ErrKindStringTooLong}
	ErrInvalidUTF8            = &CodecError{Kind: ErrKindInvalidUTF8}
	ErrUnknownItemTag         = &CodecError{Kind: ErrKindUnknownItemTag}
	ErrAttributeCountExceeded = &CodecError{Kind: ErrKindAttributeCountExceeded}
	ErrFeatureListOverflow    = &CodecError{Kind: ErrKindFeatureListOverflow}
	ErrTrailingBytes          = &CodecError{Kind: ErrKindTrailingBytes}
	ErrMalformedPairList      = &CodecError{Kind: ErrKindMalformedPairList}
	ErrUnknownScope           = &CodecError{Kind: ErrKindUnknownScope}
	ErrInvalidRange           = &CodecError{Kind: ErrKindInvalidRange}
	ErrArrayLengthMismatch    = &CodecError{Kind: ErrKindArrayLengthMismatch}
)

// CodecError is the error type returned by every encode and decode
// operation in this package.
type CodecError struct {
	// Kind is the failure category
	Kind ErrorKind

	// Op is the operation that failed (e.g. "decode folder items")
	Op string

	// Field names the value being processed, with item index when known
	// (e.g. "items[1].name")
	Field string

	// Offset is the byte offset of the failure (-1 when not applicable)
	Offset int

	// Detail is a human-readable description
	Detail string

	// Err is the underlying cause, if any
	Err error
}

func (e *CodecError) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Offset >= 0 && e.Op != "" {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *CodecError of the same kind.
func (e *CodecError) Is(target error) bool {
	t, ok := target.(*CodecError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the ErrorKind carried by err, or 0 if err is not a codec
// error.
func KindOf(err error) ErrorKind {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func newError(kind ErrorKind, op, field string, offset int, format string, args ...any) *CodecError {
	return &CodecError{
		Kind:   kind,
		Op:     op,
		Field:  field,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}

// readFailure classifies a cursor error. A declared length overrunning the
// buffer is StringLengthOverflow; anything else is TruncatedRecord.
func readFailure(op, field string, err error) *CodecError {
	kind := ErrKindTruncatedRecord
	if errors.Is(err, wire.ErrLengthOverflow) {
		kind = ErrKindStringLengthOverflow
	}

	offset := -1
	var re *wire.ReadError
	if errors.As(err, &re) {
		offset = re.Offset
	}

	return &CodecError{
		Kind:   kind,
		Op:     op,
		Field:  field,
		Offset: offset,
		Detail: err.Error(),
		Err:    err,
	}
}
