// Package storage provides a domain-agnostic object store abstraction issuing
// time-limited presigned URLs. The concrete backend is chosen once at startup.
package storage

import (
	"context"
	"time"
)

// UploadURL is a capability granting time-boxed write access to one key.
type UploadURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStore issues presigned URLs and deletes objects.
// Authorization happens at issuance; the URL itself is the credential until it expires.
// Every failure is returned as *Error.
type ObjectStore interface {
	// IssueUploadURL returns a presigned PUT URL bound to the key and content type.
	IssueUploadURL(ctx context.Context, key, contentType string, sizeBytes int64) (UploadURL, error)

	// IssueDownloadURL returns a presigned GET URL for the key.
	IssueDownloadURL(ctx context.Context, key string) (string, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// Backend is an ObjectStore that can prepare its own resources at boot.
type Backend interface {
	ObjectStore

	// Driver names the implementation (minio, s3, local).
	Driver() string

	// EnsureReady creates the bucket or directory the store writes to.
	EnsureReady(ctx context.Context) error
}

// DefaultPresignTTL applies when the configured TTL is not positive.
const DefaultPresignTTL = 15 * time.Minute

func presignTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultPresignTTL
	}
	return ttl
}
