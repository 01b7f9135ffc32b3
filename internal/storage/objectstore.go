// Package storage keeps uploaded booking documents in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"foodtruck-market/pkg/utils"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("object storage is not configured")

// Uploader stores content under key and returns the URL it is reachable at
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
}

type MinioUploader struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	log           *zap.Logger

	bucketOnce sync.Once
	bucketErr  error
}

func NewMinioUploader(config utils.StorageConfig, log *zap.Logger) (*MinioUploader, error) {
	endpoint := strings.TrimSpace(config.Endpoint)
	if endpoint == "" {
		return nil, ErrNotConfigured
	}
	bucket := strings.TrimSpace(config.Bucket)
	if bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}

	client, err := minio.New(hostOf(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}

	base := strings.TrimSpace(config.PublicURL)
	if base == "" {
		base = endpoint
		if !strings.Contains(base, "://") {
			scheme := "http"
			if config.UseSSL {
				scheme = "https"
			}
			base = scheme + "://" + base
		}
	}

	return &MinioUploader{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		log:           log.With(zap.String("component", "storage")),
	}, nil
}

func (u *MinioUploader) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("storage: object key is required")
	}
	if err := u.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := u.client.PutObject(ctx, u.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("storage: put object %s: %w", key, err)
	}

	objectURL := fmt.Sprintf("%s/%s/%s", u.publicBaseURL, u.bucket, key)
	u.log.Info("Document stored",
		zap.String("bucket", u.bucket),
		zap.String("key", key),
		zap.Int64("size", info.Size),
	)
	return objectURL, nil
}

// ensureBucket creates the bucket on first use. Documents stay private.
func (u *MinioUploader) ensureBucket(ctx context.Context) error {
	u.bucketOnce.Do(func() {
		exists, err := u.client.BucketExists(ctx, u.bucket)
		if err != nil {
			u.bucketErr = fmt.Errorf("storage: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
			u.bucketErr = fmt.Errorf("storage: create bucket: %w", err)
		}
	})
	return u.bucketErr
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

// NoopUploader rejects uploads when no bucket is configured
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrNotConfigured
}

var (
	_ Uploader = (*MinioUploader)(nil)
	_ Uploader = NoopUploader{}
)
