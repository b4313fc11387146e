//go:build integration

package archive_test

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	capturebadger "github.com/marmos91/avrcpbrowse/pkg/capture/badger"
	"github.com/marmos91/avrcpbrowse/pkg/config"
	"github.com/marmos91/avrcpbrowse/pkg/inspector"
)

// localstackEndpoint returns the S3 endpoint used by the integration tests.
func localstackEndpoint() string {
	if endpoint := os.Getenv("LOCALSTACK_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	return "http://localhost:4566"
}

// setupTestBucket creates a bucket on Localstack and returns a cleanup
// function that empties and deletes it.
func setupTestBucket(t *testing.T, bucketName string) func() {
	t.Helper()
	ctx := context.Background()
	endpoint := localstackEndpoint()

	cfg, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion("us-east-1"),
		//nolint:staticcheck // matches the resolver used by the archive factory
		awsConfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	if err != nil {
		t.Fatalf("Failed to load AWS config: %v", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucketName)}); err != nil {
		t.Fatalf("Failed to create test bucket: %v", err)
	}

	return func() {
		listResp, _ := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: aws.String(bucketName)})
		if listResp != nil {
			for _, obj := range listResp.Contents {
				_, _ = client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucketName), Key: obj.Key})
			}
		}
		_, _ = client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucketName)})
	}
}

// TestArchive_Integration ingests payloads into a badger capture store and
// exports them to Localstack through the configured exporter.
//
// Prerequisites:
//   - Localstack running on localhost:4566
//   - Run with: go test -tags=integration ./test/integration/...
//
// To start Localstack:
//
//	docker run --rm -p 4566:4566 localstack/localstack
func TestArchive_Integration(t *testing.T) {
	ctx := context.Background()

	bucketName := "avrcpbrowse-test-bucket"
	cleanup := setupTestBucket(t, bucketName)
	defer cleanup()

	// ========================================================================
	// Setup: persistent store and an inspector that records everything
	// ========================================================================

	store, err := capturebadger.New(ctx, capturebadger.Config{DBPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to open badger capture store: %v", err)
	}
	defer func() { _ = store.Close() }()

	insp, err := inspector.New(nil, store, inspector.Config{CaptureMode: inspector.CaptureAll}, nil)
	if err != nil {
		t.Fatalf("Failed to create inspector: %v", err)
	}

	list := avrcp.NewPlayerList(avrcp.StatusNoError, 1, avrcp.PlayerItem{
		PlayerID:  1,
		MajorType: avrcp.MajorTypeAudio,
		Name:      avrcp.UTF8("Music"),
	})
	data, lengths, err := avrcp.DefaultCodec().EncodeFolderItemsFramed(list)
	if err != nil {
		t.Fatalf("Failed to encode player list: %v", err)
	}

	if _, err := insp.Handle(ctx, inspector.Payload{Kind: capture.KindPlayerList, Data: data, ItemLengths: lengths, Note: "integration"}); err != nil {
		t.Fatalf("Failed to handle player list: %v", err)
	}
	if _, err := insp.Handle(ctx, inspector.Payload{Kind: capture.KindSettingPairs, Data: []byte{0x05, 0x01}}); err == nil {
		t.Fatal("Expected truncated setting pairs to fail")
	}

	// ========================================================================
	// Export through the configuration factory
	// ========================================================================

	exporter, err := config.CreateArchiveExporter(ctx, &config.ArchiveConfig{
		Enabled: true,
		S3: map[string]any{
			"region":            "us-east-1",
			"bucket":            bucketName,
			"key_prefix":        "it/",
			"endpoint":          localstackEndpoint(),
			"access_key_id":     "test",
			"secret_access_key": "test",
		},
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create exporter: %v", err)
	}

	n, err := exporter.ExportAll(ctx, store, capture.ListOptions{})
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("Expected 2 exported captures, got %d", n)
	}

	// ========================================================================
	// Fetch back and compare
	// ========================================================================

	captures, err := store.List(ctx, capture.ListOptions{})
	if err != nil {
		t.Fatalf("Failed to list captures: %v", err)
	}

	for _, want := range captures {
		got, err := exporter.Fetch(ctx, want.Kind, want.ID)
		if err != nil {
			t.Fatalf("Failed to fetch %s: %v", want.ID, err)
		}
		if string(got.Payload) != string(want.Payload) {
			t.Errorf("Payload mismatch for %s", want.ID)
		}
		if got.Outcome != want.Outcome || got.Note != want.Note {
			t.Errorf("Metadata mismatch for %s: got %+v, want %+v", want.ID, got, want)
		}
		if !got.CapturedAt.Equal(want.CapturedAt) {
			t.Errorf("Timestamp mismatch for %s: got %s, want %s", want.ID, got.CapturedAt, want.CapturedAt)
		}
	}
}
