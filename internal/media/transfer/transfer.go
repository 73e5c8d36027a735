// Package transfer moves bytes to and from presigned object store URLs.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"property_portal_backend/internal/adapters/storage"
)

// ErrTooLarge is wrapped when a download exceeds the configured limit.
var ErrTooLarge = errors.New("object exceeds download limit")

// Client performs presigned GET and PUT requests.
type Client struct {
	http     *http.Client
	maxBytes int64
}

// New creates a transfer client. maxBytes caps downloads; timeout bounds each request.
func New(timeout time.Duration, maxBytes int64) *Client {
	return &Client{
		http:     &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// NewWithHTTPClient is used by tests to inject an httptest client.
func NewWithHTTPClient(client *http.Client, maxBytes int64) *Client {
	return &Client{http: client, maxBytes: maxBytes}
}

// Download fetches the object behind a presigned GET URL.
// key only labels errors.
func (c *Client) Download(ctx context.Context, key, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, storage.NewError(storage.OpDownload, key, 0, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, storage.NewError(storage.OpDownload, key, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, storage.NewError(storage.OpDownload, key, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body := io.Reader(resp.Body)
	if c.maxBytes > 0 {
		body = io.LimitReader(resp.Body, c.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, storage.NewError(storage.OpDownload, key, resp.StatusCode, err)
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return nil, storage.NewError(storage.OpDownload, key, resp.StatusCode, ErrTooLarge)
	}
	return data, nil
}

// Upload PUTs data to a presigned URL. contentType must match the type the
// URL was issued for.
func (c *Client) Upload(ctx context.Context, key, url, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return storage.NewError(storage.OpUpload, key, 0, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))

	resp, err := c.http.Do(req)
	if err != nil {
		return storage.NewError(storage.OpUpload, key, 0, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return storage.NewError(storage.OpUpload, key, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}
	return nil
}
