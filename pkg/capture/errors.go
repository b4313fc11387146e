package capture

import "errors"

// ============================================================================
// Standard Capture Store Errors
// ============================================================================

// Implementations wrap these with context:
//
//	return fmt.Errorf("capture %s: %w", id, capture.ErrCaptureNotFound)

var (
	// ErrCaptureNotFound indicates no capture has the requested ID.
	ErrCaptureNotFound = errors.New("capture not found")

	// ErrInvalidCapture indicates a capture with an unknown kind or
	// direction was passed to Put.
	ErrInvalidCapture = errors.New("invalid capture")

	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("capture store closed")
)
