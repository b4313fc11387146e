package badger

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	xdr "github.com/rasky/go-xdr/xdr2"
)

// Serialization Strategy
// ======================
//
// Captures are stored as XDR records. The payload is already an opaque
// binary blob, so a compact self-delimiting binary envelope keeps the value
// close to the payload size and avoids base64 inflation.
//
// The record starts with a version number so the layout can evolve without
// rewriting existing databases.

const recordVersion uint32 = 1

// captureRecord is the on-disk form of a capture.
type captureRecord struct {
	Version     uint32
	ID          string
	Kind        string
	Direction   string
	CapturedAt  int64 // unix nanoseconds
	Payload     []byte
	ItemLengths []uint32
	Outcome     string
	Note        string
}

func encodeCapture(c *capture.Capture) ([]byte, error) {
	rec := captureRecord{
		Version:     recordVersion,
		ID:          c.ID.String(),
		Kind:        string(c.Kind),
		Direction:   string(c.Direction),
		CapturedAt:  c.CapturedAt.UnixNano(),
		Payload:     c.Payload,
		ItemLengths: c.ItemLengths,
		Outcome:     c.Outcome,
		Note:        c.Note,
	}

	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, &rec); err != nil {
		return nil, fmt.Errorf("failed to encode capture %s: %w", c.ID, err)
	}
	return buf.Bytes(), nil
}

func decodeCapture(data []byte) (*capture.Capture, error) {
	var rec captureRecord
	if _, err := xdr.Unmarshal(bytes.NewReader(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode capture record: %w", err)
	}
	if rec.Version != recordVersion {
		return nil, fmt.Errorf("unsupported capture record version %d", rec.Version)
	}

	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid capture id %q: %w", rec.ID, err)
	}

	c := &capture.Capture{
		ID:         id,
		Kind:       capture.Kind(rec.Kind),
		Direction:  capture.Direction(rec.Direction),
		CapturedAt: time.Unix(0, rec.CapturedAt).UTC(),
		Outcome:    rec.Outcome,
		Note:       rec.Note,
	}
	if len(rec.Payload) > 0 {
		c.Payload = rec.Payload
	}
	if len(rec.ItemLengths) > 0 {
		c.ItemLengths = rec.ItemLengths
	}
	return c, nil
}
