package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"property_portal_backend/platform/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalFixture(t *testing.T) (*LocalStore, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	store, err := NewLocalStore(&config.Config{
		LocalStorageDir:       t.TempDir(),
		LocalStoragePublicURL: srv.URL,
		LocalStorageSecret:    "test-secret",
		StoragePresignTTL:     time.Minute,
	})
	require.NoError(t, err)
	require.NoError(t, store.EnsureReady(context.Background()))

	NewLocalHandler(store).RegisterRoutes(engine)
	return store, srv
}

func put(t *testing.T, rawURL, contentType string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, rawURL, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store, _ := newLocalFixture(t)
	ctx := context.Background()
	key := "tenant/receipts/2026/file.jpg"
	body := []byte("jpeg-bytes")

	upload, err := store.IssueUploadURL(ctx, key, "image/jpeg", int64(len(body)))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), upload.ExpiresAt, 5*time.Second)

	resp := put(t, upload.URL, "image/jpeg", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	downloadURL, err := store.IssueDownloadURL(ctx, key)
	require.NoError(t, err)
	get, err := http.Get(downloadURL)
	require.NoError(t, err)
	defer get.Body.Close()

	got, err := io.ReadAll(get.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get.StatusCode)
	assert.Equal(t, "image/jpeg", get.Header.Get("Content-Type"))
	assert.Equal(t, body, got)

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(store.root, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStoreRejectsContentTypeMismatch(t *testing.T) {
	store, _ := newLocalFixture(t)

	upload, err := store.IssueUploadURL(context.Background(), "t/users/2026/a.png", "image/png", 4)
	require.NoError(t, err)

	resp := put(t, upload.URL, "image/jpeg", []byte("data"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLocalStoreRejectsOversizedBody(t *testing.T) {
	store, _ := newLocalFixture(t)

	upload, err := store.IssueUploadURL(context.Background(), "t/users/2026/a.png", "image/png", 2)
	require.NoError(t, err)

	resp := put(t, upload.URL, "image/png", []byte("too long"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestLocalStoreRejectsTamperedSignature(t *testing.T) {
	store, _ := newLocalFixture(t)

	raw, err := store.IssueDownloadURL(context.Background(), "t/users/2026/a.png")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	q.Set(paramExpires, "9999999999")
	u.RawQuery = q.Encode()

	resp, err := http.Get(u.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLocalStoreRejectsExpiredURL(t *testing.T) {
	store, _ := newLocalFixture(t)
	store.now = func() time.Time { return time.Now().Add(-time.Hour) }

	raw, err := store.IssueDownloadURL(context.Background(), "t/users/2026/a.png")
	require.NoError(t, err)
	store.now = time.Now

	resp, err := http.Get(raw)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLocalStoreDeleteMissingObject(t *testing.T) {
	store, _ := newLocalFixture(t)
	assert.NoError(t, store.Delete(context.Background(), "t/users/2026/missing.png"))
}

func TestLocalStoreRejectsTraversalKeys(t *testing.T) {
	store, _ := newLocalFixture(t)

	_, err := store.IssueUploadURL(context.Background(), "t/../../etc/passwd", "image/png", 1)
	require.Error(t, err)
	assert.True(t, IsError(err))
}

func TestLocalStoreHonoursCancelledContext(t *testing.T) {
	store, _ := newLocalFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.IssueDownloadURL(ctx, "t/users/2026/a.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
