package mlstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	apppricing "github.com/pricing/backend/internal/application/pricing"
	"github.com/pricing/backend/internal/domain/shared"
	infraconfig "github.com/pricing/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// S3ArtifactStore persists model artifacts in an S3 bucket. Compatible
// with any S3-compatible backend (AWS S3, MinIO, RustFS, etc.), so
// multiple instances can load the same trained model.
type S3ArtifactStore struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	logger    *zap.Logger
}

// S3ArtifactStoreOption is a functional option for configuring the store
type S3ArtifactStoreOption func(*S3ArtifactStore)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ArtifactStoreOption {
	return func(s *S3ArtifactStore) {
		s.logger = logger
	}
}

// WithKeyPrefix sets the key prefix artifacts are stored under
func WithKeyPrefix(prefix string) S3ArtifactStoreOption {
	return func(s *S3ArtifactStore) {
		s.keyPrefix = prefix
	}
}

// NewS3ArtifactStore creates a store from model storage configuration
func NewS3ArtifactStore(cfg infraconfig.ModelConfig, opts ...S3ArtifactStoreOption) (*S3ArtifactStore, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("artifact bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	store := &S3ArtifactStore{
		client:    client,
		bucket:    cfg.S3Bucket,
		keyPrefix: "models/",
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// NewS3ArtifactStoreWithClient creates a store with an existing S3 client.
// Useful for testing or when sharing a client across components.
func NewS3ArtifactStoreWithClient(client *s3.Client, bucket string, opts ...S3ArtifactStoreOption) *S3ArtifactStore {
	store := &S3ArtifactStore{
		client:    client,
		bucket:    bucket,
		keyPrefix: "models/",
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Save uploads an artifact blob
func (s *S3ArtifactStore) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.keyPrefix + name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload artifact %s: %w", name, err)
	}
	s.logger.Debug("uploaded model artifact",
		zap.String("bucket", s.bucket),
		zap.String("key", s.keyPrefix+name),
		zap.Int("bytes", len(data)))
	return nil
}

// Load downloads an artifact blob; missing artifacts map to ErrNotFound
func (s *S3ArtifactStore) Load(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.keyPrefix + name),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) || strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound") {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to download artifact %s: %w", name, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	return data, nil
}

// Ensure S3ArtifactStore implements ArtifactStore
var _ apppricing.ArtifactStore = (*S3ArtifactStore)(nil)
