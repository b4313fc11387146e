package config

import (
	"context"
	"strings"
	"testing"

	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	capturebadger "github.com/marmos91/avrcpbrowse/pkg/capture/badger"
	capturememory "github.com/marmos91/avrcpbrowse/pkg/capture/memory"
	"github.com/marmos91/avrcpbrowse/pkg/inspector"
)

func TestCreateCaptureStore_Memory(t *testing.T) {
	cfg := &CaptureConfig{
		Type:   "memory",
		Memory: map[string]any{"max_captures": 10},
	}

	store, err := CreateCaptureStore(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create memory capture store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, ok := store.(*capturememory.Store); !ok {
		t.Errorf("Expected *memory.Store, got %T", store)
	}
}

func TestCreateCaptureStore_MemoryNegativeLimit(t *testing.T) {
	cfg := &CaptureConfig{
		Type:   "memory",
		Memory: map[string]any{"max_captures": -1},
	}

	_, err := CreateCaptureStore(context.Background(), cfg, nil)
	if err == nil {
		t.Fatal("Expected error for negative max_captures")
	}
}

func TestCreateCaptureStore_BadgerInMemory(t *testing.T) {
	cfg := &CaptureConfig{
		Type: "badger",
		Badger: map[string]any{
			"in_memory": true,
			"retention": "1h",
		},
	}

	store, err := CreateCaptureStore(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create badger capture store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, ok := store.(*capturebadger.Store); !ok {
		t.Errorf("Expected *badger.Store, got %T", store)
	}

	c := &capture.Capture{Kind: capture.KindSettingIDs, Direction: capture.Inbound, Payload: []byte{0x01, 0x01}}
	if err := store.Put(context.Background(), c); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
}

func TestCreateCaptureStore_BadgerOnDisk(t *testing.T) {
	cfg := &CaptureConfig{
		Type:   "badger",
		Badger: map[string]any{"db_path": t.TempDir()},
	}

	store, err := CreateCaptureStore(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create badger capture store: %v", err)
	}
	_ = store.Close()
}

func TestCreateCaptureStore_BadgerInvalidRetention(t *testing.T) {
	cfg := &CaptureConfig{
		Type: "badger",
		Badger: map[string]any{
			"in_memory": true,
			"retention": "forever",
		},
	}

	_, err := CreateCaptureStore(context.Background(), cfg, nil)
	if err == nil {
		t.Fatal("Expected error for unparseable retention")
	}
}

func TestCreateCaptureStore_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &CaptureConfig{
		Type:   "badger",
		Badger: map[string]any{"in_memory": true},
	}

	_, err := CreateCaptureStore(ctx, cfg, nil)
	if err == nil {
		t.Fatal("Expected error with canceled context")
	}
}

func TestCreateCaptureStore_UnknownType(t *testing.T) {
	cfg := &CaptureConfig{Type: "postgres"}

	_, err := CreateCaptureStore(context.Background(), cfg, nil)
	if err == nil {
		t.Fatal("Expected error for unknown capture store type")
	}
	if !strings.Contains(err.Error(), "unknown capture store type") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestCreateCodec(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Codec.MaxAttributes = 3
	cfg.Codec.UTF8Policy = avrcp.UTF8Permissive

	codec, err := CreateCodec(cfg)
	if err != nil {
		t.Fatalf("CreateCodec failed: %v", err)
	}

	opts := codec.Options()
	if opts.MaxAttributes != 3 {
		t.Errorf("Expected max_attributes 3, got %d", opts.MaxAttributes)
	}
	if opts.UTF8Policy != avrcp.UTF8Permissive {
		t.Errorf("Expected permissive policy, got %q", opts.UTF8Policy)
	}
}

func TestCreateCodec_Invalid(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Codec.MaxAttributes = 300

	if _, err := CreateCodec(cfg); err == nil {
		t.Fatal("Expected error for max_attributes above 255")
	}
}

func TestCreateInspector_InvalidMode(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Inspector.CaptureMode = "sometimes"

	_, err := CreateInspector(cfg, avrcp.DefaultCodec(), capturememory.New(capturememory.Config{}), nil)
	if err == nil {
		t.Fatal("Expected error for unknown capture mode")
	}
}

func TestDecodeS3ArchiveConfig(t *testing.T) {
	s3Cfg, err := DecodeS3ArchiveConfig(map[string]any{
		"region":      "eu-west-1",
		"bucket":      "captures",
		"key_prefix":  "car/",
		"endpoint":    "http://localhost:9000",
		"max_retries": 3,
	})
	if err != nil {
		t.Fatalf("DecodeS3ArchiveConfig failed: %v", err)
	}

	if s3Cfg.Region != "eu-west-1" || s3Cfg.Bucket != "captures" || s3Cfg.KeyPrefix != "car/" {
		t.Errorf("Unexpected decoded config: %+v", s3Cfg)
	}
	if s3Cfg.Endpoint != "http://localhost:9000" {
		t.Errorf("Expected endpoint to be decoded, got %q", s3Cfg.Endpoint)
	}
	if s3Cfg.MaxRetries != 3 {
		t.Errorf("Expected max_retries 3, got %d", s3Cfg.MaxRetries)
	}
}

func TestDecodeS3ArchiveConfig_Missing(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]any
		wantErr string
	}{
		{"no bucket", map[string]any{"region": "us-east-1"}, "bucket"},
		{"no region", map[string]any{"bucket": "captures"}, "region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeS3ArchiveConfig(tt.options)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error mentioning %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestInitializeRuntime_Memory(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Inspector.CaptureMode = inspector.CaptureAll

	rt, err := InitializeRuntime(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitializeRuntime failed: %v", err)
	}
	defer func() { _ = rt.Close() }()

	if rt.Exporter != nil {
		t.Error("Expected no exporter when archive is disabled")
	}

	// Setting IDs payload: count 2, ids 0x01 0x02
	result, err := rt.Inspector.Handle(context.Background(), inspector.Payload{
		Kind: capture.KindSettingIDs,
		Data: []byte{0x02, 0x01, 0x02},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	stored, err := rt.Store.Get(context.Background(), result.CaptureID)
	if err != nil {
		t.Fatalf("Expected payload to be captured: %v", err)
	}
	if stored.Outcome != capture.OutcomeOK {
		t.Errorf("Expected outcome %q, got %q", capture.OutcomeOK, stored.Outcome)
	}
}

func TestInitializeRuntime_NilConfig(t *testing.T) {
	if _, err := InitializeRuntime(context.Background(), nil); err == nil {
		t.Fatal("Expected error for nil configuration")
	}
}
