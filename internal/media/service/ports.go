package service

import "context"

// Transcoder fits an image inside a bounding box and re-encodes it as JPEG.
type Transcoder interface {
	Transcode(ctx context.Context, input []byte, maxWidth, maxHeight int) ([]byte, error)
}

// Rasterizer renders page 1 of a PDF to PNG.
type Rasterizer interface {
	RenderFirstPage(ctx context.Context, pdf []byte) ([]byte, error)
}

// Transfer moves bytes over presigned URLs. key only labels errors.
type Transfer interface {
	Download(ctx context.Context, key, url string) ([]byte, error)
	Upload(ctx context.Context, key, url, contentType string, data []byte) error
}
