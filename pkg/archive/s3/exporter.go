// Package s3 archives captured payloads to Amazon S3 or S3-compatible
// storage.
//
// Object Layout:
//   - Key: "<prefix><kind>/<capture id>.bin" (e.g. "avrcp/folder_items/0b3c...2c11.bin")
//   - Body: the raw payload, byte for byte
//   - Metadata: the rest of the capture (direction, time, outcome, declared
//     item lengths, note)
//
// Keeping the body raw means an archived object can be fed straight back to
// `avrcpbrowse decode` without unwrapping.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/marmos91/avrcpbrowse/internal/logger"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/marmos91/avrcpbrowse/pkg/metrics"
)

// Metadata keys. S3 lower-cases user metadata keys, so these are stored
// lower case already.
const (
	metaDirection   = "direction"
	metaCapturedAt  = "captured-at"
	metaOutcome     = "outcome"
	metaItemLengths = "item-lengths"
	metaNote        = "note"
)

const contentType = "application/octet-stream"

// ErrObjectNotFound is returned by Fetch when no archived object exists.
var ErrObjectNotFound = errors.New("archived capture not found")

// Client is the subset of *s3.Client used by the exporter.
type Client interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config contains configuration for the exporter.
type Config struct {
	// Client is the configured S3 client
	Client Client

	// Bucket is the S3 bucket name
	Bucket string

	// KeyPrefix is an optional prefix for all object keys
	// Example: "avrcp/" results in keys like "avrcp/folder_items/<id>.bin"
	KeyPrefix string

	// Metrics receives upload timings. Nil disables metrics.
	Metrics metrics.ArchiveMetrics
}

// Exporter uploads captures to S3.
//
// Thread Safety:
// Safe for concurrent use.
type Exporter struct {
	client    Client
	bucket    string
	keyPrefix string
	metrics   metrics.ArchiveMetrics
}

// NewExporter creates an exporter and verifies bucket access. The bucket
// must already exist.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - cfg: Client, bucket and key prefix
//
// Returns:
//   - *Exporter: Exporter ready for use
//   - error: Returns error if the bucket is not accessible
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	if _, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.NewNoopArchiveMetrics()
	}

	return &Exporter{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
		metrics:   m,
	}, nil
}

// ObjectKey returns the key a capture is archived under.
func (e *Exporter) ObjectKey(kind capture.Kind, id uuid.UUID) string {
	return e.keyPrefix + string(kind) + "/" + id.String() + ".bin"
}

// Export uploads one capture and returns its object key.
func (e *Exporter) Export(ctx context.Context, c *capture.Capture) (key string, err error) {
	start := time.Now()
	defer func() { e.metrics.RecordUpload(time.Since(start), len(c.Payload), err) }()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	key = e.ObjectKey(c.Kind, c.ID)

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(c.Payload),
		ContentLength: aws.Int64(int64(len(c.Payload))),
		ContentType:   aws.String(contentType),
		Metadata:      encodeMetadata(c),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload capture %s: %w", c.ID, err)
	}

	logger.Debug("Archived capture %s to s3://%s/%s (%d bytes)", c.ID, e.bucket, key, len(c.Payload))
	return key, nil
}

// ExportAll uploads every capture in store matching opts, newest first.
//
// Returns the number of captures uploaded. It stops at the first failure.
func (e *Exporter) ExportAll(ctx context.Context, store capture.Store, opts capture.ListOptions) (int, error) {
	captures, err := store.List(ctx, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to list captures: %w", err)
	}

	for i, c := range captures {
		if _, err := e.Export(ctx, c); err != nil {
			return i, err
		}
	}

	logger.Info("Archived %d captures to s3://%s/%s", len(captures), e.bucket, e.keyPrefix)
	return len(captures), nil
}

// Fetch downloads an archived capture.
//
// Returns ErrObjectNotFound if no object exists under the capture's key.
func (e *Exporter) Fetch(ctx context.Context, kind capture.Kind, id uuid.UUID) (*capture.Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := e.ObjectKey(kind, id)

	out, err := e.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	c, err := decodeMetadata(out.Metadata)
	if err != nil {
		return nil, fmt.Errorf("invalid metadata on %s: %w", key, err)
	}
	c.ID = id
	c.Kind = kind
	if len(payload) > 0 {
		c.Payload = payload
	}
	return c, nil
}

func encodeMetadata(c *capture.Capture) map[string]string {
	meta := map[string]string{
		metaDirection:  string(c.Direction),
		metaCapturedAt: c.CapturedAt.UTC().Format(time.RFC3339Nano),
		metaOutcome:    c.Outcome,
	}
	if len(c.ItemLengths) > 0 {
		parts := make([]string, len(c.ItemLengths))
		for i, n := range c.ItemLengths {
			parts[i] = strconv.FormatUint(uint64(n), 10)
		}
		meta[metaItemLengths] = strings.Join(parts, ",")
	}
	if c.Note != "" {
		// Metadata values travel as HTTP headers and must stay ASCII.
		meta[metaNote] = url.QueryEscape(c.Note)
	}
	return meta
}

func decodeMetadata(meta map[string]string) (*capture.Capture, error) {
	c := &capture.Capture{
		Direction: capture.Direction(meta[metaDirection]),
		Outcome:   meta[metaOutcome],
	}

	if v := meta[metaCapturedAt]; v != "" {
		at, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("captured-at: %w", err)
		}
		c.CapturedAt = at.UTC()
	}

	if v := meta[metaItemLengths]; v != "" {
		for _, part := range strings.Split(v, ",") {
			n, err := strconv.ParseUint(part, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("item-lengths: %w", err)
			}
			c.ItemLengths = append(c.ItemLengths, uint32(n))
		}
	}

	if v := meta[metaNote]; v != "" {
		note, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("note: %w", err)
		}
		c.Note = note
	}
	return c, nil
}
