package service

import (
	"context"
	"fmt"
	"time"

	"property_portal_backend/internal/adapters/storage"
	"property_portal_backend/internal/media/keys"
	"property_portal_backend/platform/apperr"
	"property_portal_backend/platform/metrics"

	"github.com/google/uuid"
)

// DefaultMaxUploadBytes is the upload ceiling when none is configured (10 MB).
const DefaultMaxUploadBytes int64 = 10 * 1024 * 1024

// PhotoUploadRequest is a client's intent to upload a file.
type PhotoUploadRequest struct {
	EntityType    keys.EntityType
	EntityID      uuid.UUID
	ContentType   string
	FileSizeBytes int64
	FileName      string
}

// PhotoUploadResponse carries the presigned URL and both reserved keys.
type PhotoUploadResponse struct {
	UploadURL           string
	StorageKey          string
	ThumbnailStorageKey string
	ExpiresAt           time.Time
}

// UploadBroker validates upload intents, mints keys and issues upload URLs.
type UploadBroker struct {
	store    storage.ObjectStore
	maxBytes int64
	metrics  metrics.Observer
	now      func() time.Time
	newID    func() uuid.UUID
}

// NewUploadBroker creates a broker enforcing maxBytes (DefaultMaxUploadBytes when <= 0).
func NewUploadBroker(store storage.ObjectStore, maxBytes int64, observer metrics.Observer) *UploadBroker {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if observer == nil {
		observer = metrics.Nop{}
	}
	return &UploadBroker{
		store:    store,
		maxBytes: maxBytes,
		metrics:  observer,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// MaxUploadBytes returns the enforced ceiling.
func (b *UploadBroker) MaxUploadBytes() int64 {
	return b.maxBytes
}

// GenerateUploadURL handles photo uploads for any entity type (images only).
func (b *UploadBroker) GenerateUploadURL(ctx context.Context, tenantID uuid.UUID, req PhotoUploadRequest) (PhotoUploadResponse, error) {
	ext, ok := keys.PhotoExtension(req.ContentType)
	if !ok {
		return PhotoUploadResponse{}, apperr.Validation(fmt.Sprintf("content type %q is not allowed", req.ContentType)).
			WithDetails(map[string]any{"allowed": keys.AllowedPhotoContentTypes()})
	}
	return b.issue(ctx, tenantID, req.EntityType, ext, req.ContentType, req.FileSizeBytes)
}

// GenerateReceiptUploadURL handles receipt uploads, which may also be PDFs.
func (b *UploadBroker) GenerateReceiptUploadURL(ctx context.Context, tenantID uuid.UUID, contentType string, fileSizeBytes int64) (PhotoUploadResponse, error) {
	ext, ok := keys.ReceiptExtension(contentType)
	if !ok {
		return PhotoUploadResponse{}, apperr.Validation(fmt.Sprintf("content type %q is not allowed for receipts", contentType)).
			WithDetails(map[string]any{"allowed": append(keys.AllowedPhotoContentTypes(), keys.ContentTypePDF)})
	}
	return b.issue(ctx, tenantID, keys.EntityReceipt, ext, contentType, fileSizeBytes)
}

func (b *UploadBroker) issue(ctx context.Context, tenantID uuid.UUID, entity keys.EntityType, ext, contentType string, size int64) (PhotoUploadResponse, error) {
	if tenantID == uuid.Nil {
		return PhotoUploadResponse{}, apperr.Validation("tenant is required")
	}
	if size <= 0 {
		return PhotoUploadResponse{}, apperr.Validation("fileSizeBytes must be greater than 0")
	}
	if size > b.maxBytes {
		return PhotoUploadResponse{}, apperr.Validation(fmt.Sprintf("file size %d bytes exceeds maximum of %d bytes", size, b.maxBytes))
	}

	pair, err := keys.Build(tenantID, entity, b.now().UTC().Year(), b.newID(), ext)
	if err != nil {
		return PhotoUploadResponse{}, apperr.Validation(err.Error())
	}

	upload, err := b.store.IssueUploadURL(ctx, pair.StorageKey, storage.NormalizeContentType(contentType), size)
	b.metrics.RecordPresign("upload", err)
	if err != nil {
		return PhotoUploadResponse{}, apperr.Storage("failed to issue upload url", err)
	}

	return PhotoUploadResponse{
		UploadURL:           upload.URL,
		StorageKey:          pair.StorageKey,
		ThumbnailStorageKey: pair.ThumbnailStorageKey,
		ExpiresAt:           upload.ExpiresAt,
	}, nil
}
