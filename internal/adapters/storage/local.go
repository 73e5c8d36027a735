package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"property_portal_backend/platform/config"
)

// LocalObjectsPath is where the local store's signed URLs are served.
const LocalObjectsPath = "/storage/objects"

// Signed URL query parameters.
const (
	paramExpires     = "expires"
	paramContentType = "ct"
	paramSize        = "size"
	paramSignature   = "sig"
)

var (
	errSignatureInvalid = errors.New("signature invalid")
	errURLExpired       = errors.New("url expired")
)

// LocalStore implements Backend on the local filesystem. URLs point at this
// service's own LocalObjectsPath routes and are signed with HMAC-SHA256.
type LocalStore struct {
	root    string
	baseURL string
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewLocalStore creates a filesystem-backed store for development and tests.
func NewLocalStore(cfg config.StorageConfig) (*LocalStore, error) {
	if cfg.GetLocalStorageSecret() == "" {
		return nil, fmt.Errorf("local storage secret is not configured")
	}
	root, err := filepath.Abs(cfg.GetLocalStorageDir())
	if err != nil {
		return nil, fmt.Errorf("resolve local storage dir: %w", err)
	}

	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(cfg.GetLocalStoragePublicURL(), "/"),
		secret:  []byte(cfg.GetLocalStorageSecret()),
		ttl:     presignTTL(cfg.GetStoragePresignTTL()),
		now:     time.Now,
	}, nil
}

func (s *LocalStore) Driver() string { return config.StorageDriverLocal }

// EnsureReady creates the root directory.
func (s *LocalStore) EnsureReady(_ context.Context) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return newError(OpEnsureReady, s.root, 0, err)
	}
	return nil
}

// IssueUploadURL signs a PUT URL bound to key, content type, size and expiry.
func (s *LocalStore) IssueUploadURL(ctx context.Context, key, contentType string, sizeBytes int64) (UploadURL, error) {
	if err := ctx.Err(); err != nil {
		return UploadURL{}, newError(OpIssueUpload, key, 0, err)
	}
	if err := ValidateKey(key); err != nil {
		return UploadURL{}, newError(OpIssueUpload, key, 0, err)
	}

	expiresAt := s.now().Add(s.ttl)
	ct := NormalizeContentType(contentType)
	q := url.Values{}
	q.Set(paramExpires, strconv.FormatInt(expiresAt.Unix(), 10))
	q.Set(paramContentType, ct)
	q.Set(paramSize, strconv.FormatInt(sizeBytes, 10))
	q.Set(paramSignature, s.sign(http.MethodPut, key, ct, sizeBytes, expiresAt.Unix()))

	return UploadURL{URL: s.objectURL(key) + "?" + q.Encode(), ExpiresAt: expiresAt}, nil
}

// IssueDownloadURL signs a GET URL for key.
func (s *LocalStore) IssueDownloadURL(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", newError(OpIssueDownload, key, 0, err)
	}
	if err := ValidateKey(key); err != nil {
		return "", newError(OpIssueDownload, key, 0, err)
	}

	expires := s.now().Add(s.ttl).Unix()
	q := url.Values{}
	q.Set(paramExpires, strconv.FormatInt(expires, 10))
	q.Set(paramSignature, s.sign(http.MethodGet, key, "", 0, expires))
	return s.objectURL(key) + "?" + q.Encode(), nil
}

// Delete removes the file and its stored content type.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return newError(OpDelete, key, 0, err)
	}
	path, err := s.path(key)
	if err != nil {
		return newError(OpDelete, key, http.StatusBadRequest, err)
	}
	for _, p := range []string{path, path + contentTypeSuffix} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return newError(OpDelete, key, http.StatusInternalServerError, err)
		}
	}
	return nil
}

const contentTypeSuffix = ".content-type"

// verify checks a signed request for key. It returns the signed content type
// and size (zero values for GET).
func (s *LocalStore) verify(method, key string, q url.Values) (string, int64, error) {
	expires, err := strconv.ParseInt(q.Get(paramExpires), 10, 64)
	if err != nil {
		return "", 0, errSignatureInvalid
	}

	var ct string
	var size int64
	if method == http.MethodPut {
		ct = q.Get(paramContentType)
		size, err = strconv.ParseInt(q.Get(paramSize), 10, 64)
		if err != nil {
			return "", 0, errSignatureInvalid
		}
	}

	want := s.sign(method, key, ct, size, expires)
	if !hmac.Equal([]byte(want), []byte(q.Get(paramSignature))) {
		return "", 0, errSignatureInvalid
	}
	if s.now().Unix() > expires {
		return "", 0, errURLExpired
	}
	return ct, size, nil
}

func (s *LocalStore) sign(method, key, contentType string, size, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%s\n%s\n%d\n%d", method, key, contentType, size, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *LocalStore) objectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + LocalObjectsPath + "/" + strings.Join(segments, "/")
}

func (s *LocalStore) path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// write stores body atomically, rejecting bodies larger than limit.
func (s *LocalStore) write(key, contentType string, body io.Reader, limit int64) (int64, error) {
	path, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(body, limit+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, err
	}
	if n > limit {
		return n, errBodyTooLarge
	}

	if err := os.WriteFile(path+contentTypeSuffix, []byte(contentType), 0o644); err != nil {
		return n, err
	}
	return n, os.Rename(tmp.Name(), path)
}

var errBodyTooLarge = errors.New("body exceeds signed size")

// open returns the file and its stored content type.
func (s *LocalStore) open(key string) (*os.File, string, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	ct, err := os.ReadFile(path + contentTypeSuffix)
	if err != nil {
		ct = []byte("application/octet-stream")
	}
	return f, string(ct), nil
}

var _ Backend = (*LocalStore)(nil)
