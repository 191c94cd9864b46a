// Package storage adapts an S3-compatible object store (MinIO, or any S3
// endpoint) for profile photo uploads.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mfcoelho/go-todo-api/config"
)

// ObjectStorage uploads binary objects and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
}

// MinioStorage implements ObjectStorage on top of a minio-go client.
type MinioStorage struct {
	cfg    *config.StorageConfig
	client *mclient.Client
}

var _ ObjectStorage = (*MinioStorage)(nil)

// New creates the MinIO client, normalizing the endpoint scheme, and checks
// that the target bucket exists so a misconfiguration fails at startup.
func New(ctx context.Context, cfg *config.StorageConfig) (*MinioStorage, error) {
	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	return &MinioStorage{cfg: cfg, client: client}, nil
}

// Upload stores the object and returns its public URL.
func (s *MinioStorage) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, objectName, reader, size, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	return s.publicURL(objectName), nil
}

func (s *MinioStorage) publicURL(objectName string) string {
	base := s.cfg.PublicBaseURL
	if base == "" {
		base = s.cfg.Endpoint
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), s.cfg.Bucket, objectName)
}
