package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/avrcpbrowse/internal/logger"
	archives3 "github.com/marmos91/avrcpbrowse/pkg/archive/s3"
	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/marmos91/avrcpbrowse/pkg/inspector"
	"github.com/marmos91/avrcpbrowse/pkg/metrics"
	"github.com/mitchellh/mapstructure"
)

// S3ArchiveConfig is the decoded form of the archive.s3 section.
type S3ArchiveConfig struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

// CreateCodec creates the payload codec from the codec section.
func CreateCodec(cfg *Config) (*avrcp.Codec, error) {
	codec, err := avrcp.NewCodec(cfg.Codec)
	if err != nil {
		return nil, fmt.Errorf("invalid codec config: %w", err)
	}
	return codec, nil
}

// CreateInspector creates the ingest inspector.
//
// Parameters:
//   - cfg: The complete configuration
//   - codec: Codec used for decoding
//   - store: Capture store (nil disables capturing)
//   - m: Inspector metrics (nil = no metrics)
func CreateInspector(cfg *Config, codec *avrcp.Codec, store capture.Store, m metrics.InspectorMetrics) (*inspector.Inspector, error) {
	insp, err := inspector.New(codec, store, cfg.Inspector, m)
	if err != nil {
		return nil, fmt.Errorf("invalid inspector config: %w", err)
	}
	return insp, nil
}

// DecodeS3ArchiveConfig decodes and checks the archive.s3 option map.
func DecodeS3ArchiveConfig(options map[string]any) (*S3ArchiveConfig, error) {
	var s3Cfg S3ArchiveConfig
	if err := mapstructure.Decode(options, &s3Cfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 archive config: %w", err)
	}

	if s3Cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 archive: bucket is required")
	}
	if s3Cfg.Region == "" {
		return nil, fmt.Errorf("S3 archive: region is required")
	}

	return &s3Cfg, nil
}

// CreateArchiveExporter creates an S3 exporter from the archive section.
//
// Parameters:
//   - ctx: Context for initialization operations (verifies bucket access)
//   - cfg: Archive configuration
//   - m: Upload metrics (nil = no metrics)
//
// Returns:
//   - *archives3.Exporter: Exporter ready for use
//   - error: Configuration, credential or bucket access error
func CreateArchiveExporter(ctx context.Context, cfg *ArchiveConfig, m metrics.ArchiveMetrics) (*archives3.Exporter, error) {
	s3Cfg, err := DecodeS3ArchiveConfig(cfg.S3)
	if err != nil {
		return nil, err
	}

	client, err := newS3Client(ctx, s3Cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := archives3.NewExporter(ctx, archives3.Config{
		Client:    client,
		Bucket:    s3Cfg.Bucket,
		KeyPrefix: s3Cfg.KeyPrefix,
		Metrics:   m,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 exporter: %w", err)
	}

	logger.Info("S3 archive initialized: bucket=%s, region=%s, prefix=%s",
		s3Cfg.Bucket, s3Cfg.Region, s3Cfg.KeyPrefix)

	return exporter, nil
}

// newS3Client builds an S3 client for AWS or an S3-compatible endpoint.
func newS3Client(ctx context.Context, s3Cfg *S3ArchiveConfig) (*s3.Client, error) {
	// ========================================================================
	// Step 1: Build AWS Config
	// ========================================================================

	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(s3Cfg.Region))

	// Set custom endpoint if provided (for MinIO, Localstack, etc.)
	if s3Cfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               s3Cfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Set credentials if provided, otherwise use default credential chain
	if s3Cfg.AccessKeyID != "" && s3Cfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			s3Cfg.AccessKeyID,
			s3Cfg.SecretAccessKey,
			"", // session token (empty for static credentials)
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := s3Cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 5
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// ========================================================================
	// Step 2: Create S3 Client
	// ========================================================================

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Force path-style addressing for compatibility with MinIO/Localstack
		if s3Cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	return client, nil
}
