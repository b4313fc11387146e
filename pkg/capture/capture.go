// Package capture stores raw browsing payloads exchanged with the native
// Bluetooth stack, together with the outcome of decoding them.
//
// Captures make decode failures reproducible: a payload that failed with
// TruncatedRecord in the field can be listed, dumped and re-decoded later
// with the CLI, or archived to object storage.
package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names the payload shape a capture holds.
type Kind string

const (
	KindFolderItems        Kind = "folder_items"
	KindPlayerList         Kind = "player_list"
	KindElementAttributes  Kind = "element_attributes"
	KindSettingIDs         Kind = "setting_ids"
	KindSettingValues      Kind = "setting_values"
	KindSettingPairs       Kind = "setting_pairs"
	KindSettingTexts       Kind = "setting_texts"
	KindFolderItemsRequest Kind = "folder_items_request"
)

// Kinds lists every known payload kind.
var Kinds = []Kind{
	KindFolderItems,
	KindPlayerList,
	KindElementAttributes,
	KindSettingIDs,
	KindSettingValues,
	KindSettingPairs,
	KindSettingTexts,
	KindFolderItemsRequest,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown payload kind %q", s)
	}
	return k, nil
}

// Direction says which side produced a payload.
type Direction string

const (
	// Inbound payloads were received from the native stack.
	Inbound Direction = "inbound"

	// Outbound payloads were encoded for the native stack.
	Outbound Direction = "outbound"
)

// OutcomeOK marks a payload that decoded (or encoded) cleanly. Failed
// payloads carry the codec error kind name instead (e.g. "TruncatedRecord").
const OutcomeOK = "ok"

// Capture is one recorded payload.
type Capture struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	Kind       Kind      `json:"kind" yaml:"kind"`
	Direction  Direction `json:"direction" yaml:"direction"`
	CapturedAt time.Time `json:"captured_at" yaml:"captured_at"`

	// Payload is the raw record, exactly as exchanged.
	Payload []byte `json:"payload" yaml:"payload"`

	// ItemLengths are the per-item lengths declared alongside a folder
	// items payload. Empty for other kinds.
	ItemLengths []uint32 `json:"item_lengths,omitempty" yaml:"item_lengths,omitempty"`

	Outcome string `json:"outcome" yaml:"outcome"`
	Note    string `json:"note,omitempty" yaml:"note,omitempty"`
}

// ListOptions filters and bounds Store.List.
type ListOptions struct {
	// Kind restricts results to one payload kind. Empty means all kinds.
	Kind Kind

	// Limit caps the number of results. 0 means no limit.
	Limit int
}

// Store persists captures.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores c. A zero ID is replaced by a new random UUID and a zero
	// CapturedAt by the current time; both are written back to c.
	//
	// Returns ErrInvalidCapture if the kind or direction is unknown.
	Put(ctx context.Context, c *Capture) error

	// Get returns the capture with the given ID, or ErrCaptureNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Capture, error)

	// List returns captures newest first.
	List(ctx context.Context, opts ListOptions) ([]*Capture, error)

	// Delete removes a capture, or returns ErrCaptureNotFound.
	Delete(ctx context.Context, id uuid.UUID) error

	// Close releases the store's resources.
	Close() error
}

// Prepare validates c, fills its ID and timestamp and normalizes the
// timestamp to UTC. Store implementations call it at the start of Put.
func Prepare(c *Capture, now func() time.Time) error {
	if c == nil {
		return fmt.Errorf("nil capture: %w", ErrInvalidCapture)
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("kind %q: %w", c.Kind, ErrInvalidCapture)
	}
	switch c.Direction {
	case Inbound, Outbound:
	default:
		return fmt.Errorf("direction %q: %w", c.Direction, ErrInvalidCapture)
	}

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CapturedAt.IsZero() {
		c.CapturedAt = now()
	}
	c.CapturedAt = c.CapturedAt.Round(0).UTC()
	return nil
}

// Clone returns a deep copy of c.
func Clone(c *Capture) *Capture {
	out := *c
	out.Payload = append([]byte(nil), c.Payload...)
	if c.ItemLengths != nil {
		out.ItemLengths = append([]uint32(nil), c.ItemLengths...)
	}
	return &out
}
