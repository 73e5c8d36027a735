package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"property_portal_backend/internal/adapters/storage"
	"property_portal_backend/internal/media/keys"
	"property_portal_backend/platform/logger"
	"property_portal_backend/platform/metrics"
)

// Thumbnail bounding box shared by every pipeline.
const (
	ThumbnailMaxWidth  = 300
	ThumbnailMaxHeight = 300

	thumbnailContentType = "image/jpeg"
)

// Pipeline names used in logs and metrics.
const (
	PipelineReceipt = "receipt"
	PipelinePhoto   = "photo"
)

// Stage identifies a step of a thumbnail pipeline.
type Stage string

const (
	StageDownloadURL Stage = "download_url"
	StageDownload    Stage = "download"
	StageRasterize   Stage = "rasterize"
	StageTranscode   Stage = "transcode"
	StageUploadURL   Stage = "upload_url"
	StageUpload      Stage = "upload"
)

// ThumbnailResult is the outcome of a best-effort thumbnail run. A failed run
// carries the stage and cause but no key; it is never returned as an error.
type ThumbnailResult struct {
	Key   string
	Stage Stage
	Err   error
}

// OK reports whether a thumbnail was written.
func (r ThumbnailResult) OK() bool {
	return r.Err == nil && r.Key != ""
}

// KeyPtr returns the thumbnail key, or nil when generation failed.
func (r ThumbnailResult) KeyPtr() *string {
	if !r.OK() {
		return nil
	}
	key := r.Key
	return &key
}

func failed(stage Stage, err error) ThumbnailResult {
	return ThumbnailResult{Stage: stage, Err: err}
}

// thumbnailer runs download -> (rasterize) -> transcode -> upload once.
type thumbnailer struct {
	pipeline   string
	store      storage.ObjectStore
	transfer   Transfer
	transcoder Transcoder
	rasterizer Rasterizer
	metrics    metrics.Observer
	log        *logger.Logger
}

func (t *thumbnailer) run(ctx context.Context, sourceKey, contentType, thumbKey string) (result ThumbnailResult) {
	stage := StageDownloadURL
	defer func() {
		if r := recover(); r != nil {
			result = failed(stage, fmt.Errorf("panic: %v", r))
		}
		if !result.OK() {
			t.log.WithContext(ctx).PipelineStageFailed(t.pipeline, string(result.Stage), sourceKey, result.Err)
		}
		t.metrics.RecordThumbnail(t.pipeline, result.OK())
	}()

	var downloadURL string
	if err := t.timed(ctx, stage, func() (err error) {
		downloadURL, err = t.store.IssueDownloadURL(ctx, sourceKey)
		return err
	}); err != nil {
		return failed(stage, err)
	}

	stage = StageDownload
	var data []byte
	if err := t.timed(ctx, stage, func() (err error) {
		data, err = t.transfer.Download(ctx, sourceKey, downloadURL)
		return err
	}); err != nil {
		return failed(stage, err)
	}

	if keys.IsPDF(contentType) {
		stage = StageRasterize
		if t.rasterizer == nil {
			return failed(stage, errors.New("pdf rendering is not available"))
		}
		if err := t.timed(ctx, stage, func() (err error) {
			data, err = t.rasterizer.RenderFirstPage(ctx, data)
			return err
		}); err != nil {
			return failed(stage, err)
		}
	}

	stage = StageTranscode
	if err := t.timed(ctx, stage, func() (err error) {
		data, err = t.transcoder.Transcode(ctx, data, ThumbnailMaxWidth, ThumbnailMaxHeight)
		return err
	}); err != nil {
		return failed(stage, err)
	}

	stage = StageUploadURL
	var upload storage.UploadURL
	if err := t.timed(ctx, stage, func() (err error) {
		upload, err = t.store.IssueUploadURL(ctx, thumbKey, thumbnailContentType, int64(len(data)))
		return err
	}); err != nil {
		return failed(stage, err)
	}

	stage = StageUpload
	if err := t.timed(ctx, stage, func() error {
		return t.transfer.Upload(ctx, thumbKey, upload.URL, thumbnailContentType, data)
	}); err != nil {
		return failed(stage, err)
	}

	return ThumbnailResult{Key: thumbKey}
}

// timed checks for cancellation, runs fn and records its latency.
func (t *thumbnailer) timed(ctx context.Context, stage Stage, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	t.metrics.RecordStage(t.pipeline, string(stage), time.Since(start), err)
	return err
}
