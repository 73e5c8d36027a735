// Package rasterize renders the first page of a PDF to a PNG image.
package rasterize

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

// DefaultDPI is enough detail for a 300px thumbnail of an A4 receipt.
const DefaultDPI = 100

var (
	// ErrNotPDF is wrapped by Error when the input lacks a PDF header.
	ErrNotPDF = errors.New("input is not a PDF document")
	// ErrNoPages is wrapped by Error when the document has no pages.
	ErrNoPages = errors.New("document has no pages")
)

var pdfMagic = []byte("%PDF-")

// Error reports a PDF that could not be rendered.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "render first page: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Rasterizer renders PDFs with MuPDF.
type Rasterizer struct {
	dpi float64
}

// New returns a Rasterizer rendering at dpi (DefaultDPI when dpi <= 0).
func New(dpi float64) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{dpi: dpi}
}

// RenderFirstPage renders page 1 of pdf and returns it as PNG bytes.
// Only the first page is inspected.
func (r *Rasterizer) RenderFirstPage(ctx context.Context, pdf []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(bytes.TrimLeft(pdf, "\x00\t\r\n "), pdfMagic) {
		return nil, &Error{Err: ErrNotPDF}
	}

	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, &Error{Err: err}
	}
	defer doc.Close()

	if doc.NumPage() < 1 {
		return nil, &Error{Err: ErrNoPages}
	}

	img, err := doc.ImageDPI(0, r.dpi)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("page 1: %w", err)}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.PNG); err != nil {
		return nil, &Error{Err: fmt.Errorf("encode png: %w", err)}
	}
	return out.Bytes(), nil
}
