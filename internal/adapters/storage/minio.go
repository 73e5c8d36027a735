package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"property_portal_backend/platform/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore implements Backend on a MinIO (or any S3 API) endpoint using minio-go.
type MinIOStore struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
	now    func() time.Time
}

// NewMinIOStore creates a MinIO-backed store writing to the media bucket.
func NewMinIOStore(cfg config.StorageConfig) (*MinIOStore, error) {
	if cfg.GetMinIOEndpoint() == "" {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOStore{
		client: client,
		bucket: cfg.GetMediaBucket(),
		ttl:    presignTTL(cfg.GetStoragePresignTTL()),
		now:    time.Now,
	}, nil
}

func (s *MinIOStore) Driver() string { return config.StorageDriverMinIO }

// EnsureReady creates the bucket if it doesn't exist.
func (s *MinIOStore) EnsureReady(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return newError(OpEnsureReady, s.bucket, minioStatus(err), err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return newError(OpEnsureReady, s.bucket, minioStatus(err), fmt.Errorf("create bucket: %w", err))
		}
	}

	return nil
}

// IssueUploadURL presigns a PUT with Content-Type and Content-Length in the
// signed headers, so the provider rejects uploads that differ from the declaration.
func (s *MinIOStore) IssueUploadURL(ctx context.Context, key, contentType string, sizeBytes int64) (UploadURL, error) {
	if err := ValidateKey(key); err != nil {
		return UploadURL{}, newError(OpIssueUpload, key, 0, err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", contentType)
	if sizeBytes > 0 {
		headers.Set("Content-Length", strconv.FormatInt(sizeBytes, 10))
	}

	expiresAt := s.now().Add(s.ttl)
	presigned, err := s.client.PresignHeader(ctx, http.MethodPut, s.bucket, key, s.ttl, nil, headers)
	if err != nil {
		return UploadURL{}, newError(OpIssueUpload, key, minioStatus(err), err)
	}

	return UploadURL{URL: presigned.String(), ExpiresAt: expiresAt}, nil
}

// IssueDownloadURL presigns a GET for the key.
func (s *MinIOStore) IssueDownloadURL(ctx context.Context, key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", newError(OpIssueDownload, key, 0, err)
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.ttl, url.Values{})
	if err != nil {
		return "", newError(OpIssueDownload, key, minioStatus(err), err)
	}
	return presigned.String(), nil
}

// Delete removes an object directly (not presigned).
func (s *MinIOStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return newError(OpDelete, key, minioStatus(err), err)
	}
	return nil
}

func minioStatus(err error) int {
	return minio.ToErrorResponse(err).StatusCode
}

var _ Backend = (*MinIOStore)(nil)
