// Package inspector is the ingest path for browsing payloads coming up from
// the native Bluetooth stack.
//
// Every payload is rate limited, decoded according to its kind, measured,
// logged and, depending on the capture mode, recorded in a capture store
// together with the decode outcome. A payload that fails to decode is
// dropped on its own; it never affects the payloads that follow.
package inspector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/avrcpbrowse/internal/logger"
	"github.com/marmos91/avrcpbrowse/internal/ratelimiter"
	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/marmos91/avrcpbrowse/pkg/metrics"
)

var (
	// ErrRateLimited is returned when a payload arrives faster than the
	// configured rate. The payload is dropped without being decoded.
	ErrRateLimited = errors.New("payload rate limited")

	// ErrPayloadTooLarge is returned for payloads above MaxPayloadBytes.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// CaptureMode selects which payloads are persisted.
type CaptureMode string

const (
	// CaptureAll records every decoded payload.
	CaptureAll CaptureMode = "all"

	// CaptureFailures records only payloads that failed to decode.
	CaptureFailures CaptureMode = "failures"

	// CaptureNone disables recording.
	CaptureNone CaptureMode = "none"
)

// Config configures an Inspector.
type Config struct {
	// RateLimit is the sustained number of payloads admitted per second.
	// 0 disables rate limiting.
	RateLimit uint `mapstructure:"rate_limit" yaml:"rate_limit"`

	// Burst is the number of payloads admitted at once. 0 means RateLimit.
	Burst uint `mapstructure:"burst" yaml:"burst"`

	// MaxPayloadBytes rejects larger payloads before decoding. 0 means no
	// limit.
	MaxPayloadBytes int `mapstructure:"max_payload_bytes" yaml:"max_payload_bytes"`

	// CaptureMode selects which payloads are recorded. Defaults to
	// CaptureFailures.
	CaptureMode CaptureMode `mapstructure:"capture_mode" yaml:"capture_mode"`
}

// Payload is one raw record handed over by the native stack.
type Payload struct {
	Kind capture.Kind

	// Data is the record exactly as received.
	Data []byte

	// ItemLengths are the declared per-item lengths of a folder items
	// payload. When set, they are verified against the decoded items.
	ItemLengths []uint32

	// Note is stored with the capture.
	Note string
}

// Result is a successfully decoded payload.
type Result struct {
	Kind capture.Kind

	// CaptureID identifies the stored capture, uuid.Nil if none was stored.
	CaptureID uuid.UUID

	// Items is the number of entries decoded.
	Items int

	// Value holds the decoded record:
	//   - folder_items, player_list: *avrcp.FolderItemList
	//   - element_attributes: []avrcp.Attribute
	//   - setting_ids, setting_values: []uint8
	//   - setting_pairs: []avrcp.SettingPair
	//   - setting_texts: []avrcp.SettingText
	//   - folder_items_request: *avrcp.FolderItemsRequest
	Value any
}

// FolderItems returns the decoded list for folder_items and player_list
// payloads, nil otherwise.
func (r *Result) FolderItems() *avrcp.FolderItemList {
	list, _ := r.Value.(*avrcp.FolderItemList)
	return list
}

// Inspector decodes, measures and records inbound payloads.
//
// Thread safety:
// Handle is safe for concurrent use.
type Inspector struct {
	codec   *avrcp.Codec
	store   capture.Store
	limiter *ratelimiter.RateLimiter
	metrics metrics.InspectorMetrics

	maxPayload int
	mode       CaptureMode
}

// New creates an Inspector.
//
// Parameters:
//   - codec: Codec used for decoding. Nil uses avrcp.DefaultCodec().
//   - store: Capture store. Nil disables recording regardless of the mode.
//   - cfg: Rate limit, payload size limit and capture mode
//   - m: Metrics sink. Nil disables metrics.
func New(codec *avrcp.Codec, store capture.Store, cfg Config, m metrics.InspectorMetrics) (*Inspector, error) {
	if codec == nil {
		codec = avrcp.DefaultCodec()
	}
	if m == nil {
		m = metrics.NewNoopInspectorMetrics()
	}

	mode := cfg.CaptureMode
	switch mode {
	case "":
		mode = CaptureFailures
	case CaptureAll, CaptureFailures, CaptureNone:
	default:
		return nil, fmt.Errorf("invalid capture mode %q (must be all, failures or none)", mode)
	}
	if store == nil {
		mode = CaptureNone
	}
	if cfg.MaxPayloadBytes < 0 {
		return nil, fmt.Errorf("max_payload_bytes must be >= 0, got %d", cfg.MaxPayloadBytes)
	}

	return &Inspector{
		codec:      codec,
		store:      store,
		limiter:    ratelimiter.New(cfg.RateLimit, cfg.Burst),
		metrics:    m,
		maxPayload: cfg.MaxPayloadBytes,
		mode:       mode,
	}, nil
}

// Handle inspects one payload.
//
// Returns:
//   - *Result: The decoded payload
//   - error: ErrRateLimited or ErrPayloadTooLarge if the payload was
//     dropped before decoding, the *avrcp.CodecError unchanged if decoding
//     failed, or ctx.Err()
//
// Capture store failures are logged and never fail the call.
func (i *Inspector) Handle(ctx context.Context, p Payload) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("inspect: unknown payload kind %q", p.Kind)
	}

	if !i.limiter.Allow() {
		i.metrics.RecordDropped("rate_limited")
		logger.Warn("Dropping %s payload (%d bytes): rate limited", p.Kind, len(p.Data))
		return nil, ErrRateLimited
	}
	if i.maxPayload > 0 && len(p.Data) > i.maxPayload {
		i.metrics.RecordDropped("oversize")
		logger.Warn("Dropping %s payload: %d bytes exceeds limit of %d", p.Kind, len(p.Data), i.maxPayload)
		return nil, ErrPayloadTooLarge
	}

	i.metrics.RecordPayloadBytes(string(p.Kind), len(p.Data))

	start := time.Now()
	value, items, err := Decode(i.codec, p)
	duration := time.Since(start)

	outcome := capture.OutcomeOK
	errorKind := ""
	if err != nil {
		errorKind = avrcp.KindOf(err).String()
		outcome = errorKind
		items = 0
	}
	i.metrics.RecordDecode(string(p.Kind), duration, items, errorKind)

	captureID := i.record(ctx, p, outcome, err != nil)

	if err != nil {
		logger.Warn("Dropping %s payload (%d bytes, capture %s): %v", p.Kind, len(p.Data), captureID, err)
		return nil, err
	}

	logger.Debug("Decoded %s payload: %d bytes, %d items in %s", p.Kind, len(p.Data), items, duration)

	return &Result{
		Kind:      p.Kind,
		CaptureID: captureID,
		Items:     items,
		Value:     value,
	}, nil
}

// record stores the payload according to the capture mode and returns the
// capture id, or uuid.Nil if nothing was stored.
func (i *Inspector) record(ctx context.Context, p Payload, outcome string, failed bool) uuid.UUID {
	switch {
	case i.mode == CaptureNone:
		return uuid.Nil
	case i.mode == CaptureFailures && !failed:
		return uuid.Nil
	}

	c := &capture.Capture{
		Kind:        p.Kind,
		Direction:   capture.Inbound,
		Payload:     p.Data,
		ItemLengths: p.ItemLengths,
		Outcome:     outcome,
		Note:        p.Note,
	}
	if err := i.store.Put(ctx, c); err != nil {
		i.metrics.RecordDropped("capture_failed")
		logger.Error("Failed to record %s capture: %v", p.Kind, err)
		return uuid.Nil
	}
	return c.ID
}
