// Package storage provides the object-store document source the ingest
// pipeline checks locators against.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ocr"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// DocumentStore wraps the object-store client used for contract documents.
type DocumentStore struct {
	client *minio.Client
	logger *slog.Logger
}

func NewDocumentStore(cfg Config, logger *slog.Logger) (*DocumentStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object-store client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentStore{client: client, logger: logger}, nil
}

// StatDocument confirms the locator points at a stored object. Missing
// objects map to the NOT_FOUND taxonomy so callers fail with a reason
// instead of submitting a detection job that cannot succeed.
func (s *DocumentStore) StatDocument(ctx context.Context, loc ocr.DocumentLocation) error {
	_, err := s.client.StatObject(ctx, loc.Bucket, loc.Key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return common.NewAppError("NOT_FOUND",
				fmt.Sprintf("document %s/%s does not exist", loc.Bucket, loc.Key),
				common.ErrNotFound)
		}
		return fmt.Errorf("failed to stat document %s/%s: %w", loc.Bucket, loc.Key, err)
	}
	return nil
}

// UploadDocument stores a contract document, creating the bucket if needed.
// Used by the local one-shot tooling to seed test documents.
func (s *DocumentStore) UploadDocument(ctx context.Context, loc ocr.DocumentLocation, reader io.Reader, size int64, contentType string) error {
	exists, err := s.client.BucketExists(ctx, loc.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, loc.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	_, err = s.client.PutObject(ctx, loc.Bucket, loc.Key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}
	s.logger.Info("storage.document.uploaded", "bucket", loc.Bucket, "key", loc.Key, "bytes", size)
	return nil
}
