package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/harshshukla07/SwiftCV/internal/config"
)

// Archive keeps the raw text of every AI-ingested resume in an S3-compatible
// bucket so originals can be re-processed later. Archival is best-effort;
// callers log failures and carry on.
type Archive struct {
	client *minio.Client
	bucket string
}

// NewArchive initializes the archive client and ensures the bucket exists.
// Returns (nil, nil) when archival is disabled in config.
func NewArchive(cfg config.MinIOConfig) (*Archive, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Archive{client: client, bucket: cfg.Bucket}, nil
}

// StoreResumeText uploads the raw resume text under a per-user prefix and
// returns the object key.
func (a *Archive) StoreResumeText(ctx context.Context, userID uint, text string) (string, error) {
	objectKey := fmt.Sprintf("resume-sources/%d/%s.txt", userID, uuid.NewString())
	reader := strings.NewReader(text)

	_, err := a.client.PutObject(ctx, a.bucket, objectKey, reader, int64(len(text)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", objectKey, err)
	}
	return objectKey, nil
}

// PresignedSourceURL generates a limited-lifetime download link for an
// archived resume text.
func (a *Archive) PresignedSourceURL(ctx context.Context, objectKey string, duration time.Duration) (string, error) {
	presignedURL, err := a.client.PresignedGetObject(ctx, a.bucket, objectKey, duration, nil)
	if err != nil {
		return "", fmt.Errorf("generate presigned url for %q: %w", objectKey, err)
	}
	return presignedURL.String(), nil
}
