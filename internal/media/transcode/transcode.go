// Package transcode turns arbitrary uploaded images into metadata-free JPEG
// thumbnails that fit a bounding box.
package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Quality is the fixed JPEG quality of every output.
const Quality = 85

var (
	// ErrEmptyInput is wrapped by Error when no bytes were supplied.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidBounds is wrapped by Error when the bounding box is not positive.
	ErrInvalidBounds = errors.New("invalid bounds")
)

// Error reports bytes that could not be decoded or re-encoded.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transcode %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transcoder decodes JPEG, PNG, GIF and WebP input and re-encodes it as JPEG.
// Output is built from decoded pixels only, so EXIF, ICC, IPTC and XMP never survive.
type Transcoder struct{}

// New returns a Transcoder.
func New() *Transcoder {
	return &Transcoder{}
}

// Transcode fits input within maxWidth×maxHeight without upscaling and returns JPEG bytes.
func (t *Transcoder) Transcode(ctx context.Context, input []byte, maxWidth, maxHeight int) ([]byte, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, &Error{Op: "resize", Err: fmt.Errorf("%w %dx%d", ErrInvalidBounds, maxWidth, maxHeight)}
	}
	if len(input) == 0 {
		return nil, &Error{Op: "decode", Err: ErrEmptyInput}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(input), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &Error{Op: "decode", Err: err}
	}

	bounds := img.Bounds()
	width, height := FitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	if width != bounds.Dx() || height != bounds.Dy() {
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}
	img = flatten(img)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(Quality)); err != nil {
		return nil, &Error{Op: "encode", Err: err}
	}
	return out.Bytes(), nil
}

// FitWithin returns target dimensions for a width×height source inside
// maxWidth×maxHeight. Sources that already fit are returned unchanged.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	scale := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	return max(w, 1), max(h, 1)
}

// flatten composites translucent images onto white; JPEG has no alpha channel.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
