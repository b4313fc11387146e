package metrics

import "time"

// InspectorMetrics provides observability for payload inspection.
//
// This interface is optional - if not provided to the inspector, a no-op
// implementation is used.
type InspectorMetrics interface {
	// RecordDecode records one decode attempt.
	//
	// Parameters:
	//   - kind: payload kind (e.g. "folder_items", "element_attributes")
	//   - duration: time spent decoding
	//   - items: number of entries decoded (0 on failure)
	//   - errorKind: codec error kind name, empty on success
	RecordDecode(kind string, duration time.Duration, items int, errorKind string)

	// RecordPayloadBytes records the size of an inspected payload.
	RecordPayloadBytes(kind string, bytes int)

	// RecordDropped counts payloads rejected before decoding.
	//
	// Parameters:
	//   - reason: "rate_limited" or "oversize"
	RecordDropped(reason string)
}

// CaptureMetrics provides observability for capture store operations.
type CaptureMetrics interface {
	// RecordOperation records a store operation and its outcome.
	//
	// Parameters:
	//   - operation: "put", "get", "list" or "delete"
	//   - duration: time taken
	//   - err: error if the operation failed, nil if successful
	RecordOperation(operation string, duration time.Duration, err error)
}

// ArchiveMetrics provides observability for capture archive uploads.
type ArchiveMetrics interface {
	// RecordUpload records one uploaded capture.
	RecordUpload(duration time.Duration, bytes int, err error)
}

// NewNoopInspectorMetrics returns an InspectorMetrics that records nothing.
func NewNoopInspectorMetrics() InspectorMetrics {
	return noopInspectorMetrics{}
}

// NewNoopCaptureMetrics returns a CaptureMetrics that records nothing.
func NewNoopCaptureMetrics() CaptureMetrics {
	return noopCaptureMetrics{}
}

// NewNoopArchiveMetrics returns an ArchiveMetrics that records nothing.
func NewNoopArchiveMetrics() ArchiveMetrics {
	return noopArchiveMetrics{}
}

type noopInspectorMetrics struct{}

func (noopInspectorMetrics) RecordDecode(kind string, duration time.Duration, items int, errorKind string) {
}
func (noopInspectorMetrics) RecordPayloadBytes(kind string, bytes int) {}
func (noopInspectorMetrics) RecordDropped(reason string)               {}

type noopCaptureMetrics struct{}

func (noopCaptureMetrics) RecordOperation(operation string, duration time.Duration, err error) {}

type noopArchiveMetrics struct{}

func (noopArchiveMetrics) RecordUpload(duration time.Duration, bytes int, err error) {}
