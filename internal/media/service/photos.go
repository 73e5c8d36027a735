package service

import (
	"context"
	"strings"

	"property_portal_backend/internal/adapters/storage"
	"property_portal_backend/platform/apperr"
	"property_portal_backend/platform/logger"
	"property_portal_backend/platform/metrics"
)

// PhotoRecord is the durable result of a confirmed upload.
// ThumbnailStorageKey is nil when thumbnail generation failed.
type PhotoRecord struct {
	StorageKey          string
	ThumbnailStorageKey *string
	ContentType         string
	FileSizeBytes       int64
}

// PhotoConfirmation confirms generic photo uploads.
type PhotoConfirmation struct {
	runner *thumbnailer
}

// NewPhotoConfirmation wires the photo pipeline. Photos are always images, so no
// rasterizer is involved. observer may be nil.
func NewPhotoConfirmation(store storage.ObjectStore, transfer Transfer, transcoder Transcoder, observer metrics.Observer, log *logger.Logger) *PhotoConfirmation {
	if observer == nil {
		observer = metrics.Nop{}
	}
	return &PhotoConfirmation{runner: &thumbnailer{
		pipeline:   PipelinePhoto,
		store:      store,
		transfer:   transfer,
		transcoder: transcoder,
		metrics:    observer,
		log:        log,
	}}
}

// ConfirmUpload validates its arguments, then makes one best-effort attempt to
// write the thumbnail at thumbnailStorageKey. Only validation fails the call.
func (p *PhotoConfirmation) ConfirmUpload(ctx context.Context, storageKey, thumbnailStorageKey, contentType string, fileSizeBytes int64) (PhotoRecord, error) {
	switch {
	case strings.TrimSpace(storageKey) == "":
		return PhotoRecord{}, apperr.Validation("storageKey is required").WithOp("ConfirmUpload")
	case strings.TrimSpace(thumbnailStorageKey) == "":
		return PhotoRecord{}, apperr.Validation("thumbnailStorageKey is required").WithOp("ConfirmUpload")
	case strings.TrimSpace(contentType) == "":
		return PhotoRecord{}, apperr.Validation("contentType is required").WithOp("ConfirmUpload")
	case fileSizeBytes <= 0:
		return PhotoRecord{}, apperr.Validation("fileSizeBytes must be greater than 0").WithOp("ConfirmUpload")
	}

	result := p.runner.run(ctx, storageKey, storage.NormalizeContentType(contentType), thumbnailStorageKey)

	return PhotoRecord{
		StorageKey:          storageKey,
		ThumbnailStorageKey: result.KeyPtr(),
		ContentType:         contentType,
		FileSizeBytes:       fileSizeBytes,
	}, nil
}
