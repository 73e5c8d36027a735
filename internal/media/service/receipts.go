package service

import (
	"context"

	"property_portal_backend/internal/adapters/storage"
	"property_portal_backend/internal/media/keys"
	"property_portal_backend/platform/logger"
	"property_portal_backend/platform/metrics"
)

// ReceiptThumbnails generates thumbnails for receipt images and PDFs.
type ReceiptThumbnails struct {
	runner *thumbnailer
}

// NewReceiptThumbnails wires the receipt pipeline. observer may be nil.
func NewReceiptThumbnails(store storage.ObjectStore, transfer Transfer, transcoder Transcoder, rasterizer Rasterizer, observer metrics.Observer, log *logger.Logger) *ReceiptThumbnails {
	if observer == nil {
		observer = metrics.Nop{}
	}
	return &ReceiptThumbnails{runner: &thumbnailer{
		pipeline:   PipelineReceipt,
		store:      store,
		transfer:   transfer,
		transcoder: transcoder,
		rasterizer: rasterizer,
		metrics:    observer,
		log:        log,
	}}
}

// GenerateThumbnail writes a 300×300 JPEG thumbnail next to storageKey and
// returns its key. PDFs are rendered from page 1 first. A single attempt is made;
// every failure is reported through the result, never as an error or panic.
func (r *ReceiptThumbnails) GenerateThumbnail(ctx context.Context, storageKey, contentType string) ThumbnailResult {
	return r.runner.run(ctx, storageKey, contentType, keys.DeriveThumbnailKey(storageKey))
}
