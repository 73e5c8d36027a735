package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"property_portal_backend/internal/adapters/storage"
	"property_portal_backend/internal/events"
	"property_portal_backend/internal/media/repository"

	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

type fakeStore struct {
	mu            sync.Mutex
	uploadErr     error
	downloadErr   error
	deleteErr     map[string]error
	uploadCalls   []string
	downloadCalls []string
	deleted       []string
}

func (s *fakeStore) IssueUploadURL(_ context.Context, key, contentType string, sizeBytes int64) (storage.UploadURL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadCalls = append(s.uploadCalls, key)
	if s.uploadErr != nil {
		return storage.UploadURL{}, storage.NewError(storage.OpIssueUpload, key, 0, s.uploadErr)
	}
	return storage.UploadURL{
		URL:       "https://store.test/put/" + key,
		ExpiresAt: time.Date(2026, 1, 1, 0, 15, 0, 0, time.UTC),
	}, nil
}

func (s *fakeStore) IssueDownloadURL(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloadCalls = append(s.downloadCalls, key)
	if s.downloadErr != nil {
		return "", storage.NewError(storage.OpIssueDownload, key, 0, s.downloadErr)
	}
	return "https://store.test/get/" + key, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deleteErr[key]; err != nil {
		return storage.NewError(storage.OpDelete, key, 500, err)
	}
	s.deleted = append(s.deleted, key)
	return nil
}

type fakeTransfer struct {
	mu          sync.Mutex
	source      []byte
	downloadErr error
	uploadErr   error
	uploaded    map[string][]byte
	uploadTypes map[string]string
}

func newFakeTransfer(source []byte) *fakeTransfer {
	return &fakeTransfer{source: source, uploaded: map[string][]byte{}, uploadTypes: map[string]string{}}
}

func (f *fakeTransfer) Download(_ context.Context, key, _ string) ([]byte, error) {
	if f.downloadErr != nil {
		return nil, storage.NewError(storage.OpDownload, key, 404, f.downloadErr)
	}
	return f.source, nil
}

func (f *fakeTransfer) Upload(_ context.Context, key, _, contentType string, data []byte) error {
	if f.uploadErr != nil {
		return storage.NewError(storage.OpUpload, key, 403, f.uploadErr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded[key] = data
	f.uploadTypes[key] = contentType
	return nil
}

type fakeTranscoder struct {
	err    error
	calls  int
	inputs [][]byte
}

func (f *fakeTranscoder) Transcode(_ context.Context, input []byte, _, _ int) ([]byte, error) {
	f.calls++
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("jpeg-thumb"), nil
}

type fakeRasterizer struct {
	err   error
	calls int
}

func (f *fakeRasterizer) RenderFirstPage(_ context.Context, _ []byte) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png-page"), nil
}

type fakeRepo struct {
	mu       sync.Mutex
	photos   map[uuid.UUID]repository.Photo
	receipts map[uuid.UUID]repository.Receipt
	attempts []*string
	errOn    map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		photos:   map[uuid.UUID]repository.Photo{},
		receipts: map[uuid.UUID]repository.Receipt{},
		errOn:    map[string]error{},
	}
}

func (r *fakeRepo) CreatePhoto(_ context.Context, p repository.CreatePhotoParams) (repository.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.errOn["CreatePhoto"]; err != nil {
		return repository.Photo{}, err
	}
	for _, existing := range r.photos {
		if existing.StorageKey == p.StorageKey {
			return repository.Photo{}, repository.ErrDuplicate
		}
	}
	photo := repository.Photo{
		ID:                  uuid.New(),
		TenantID:            p.TenantID,
		EntityType:          p.EntityType,
		EntityID:            p.EntityID,
		StorageKey:          p.StorageKey,
		ThumbnailStorageKey: p.ThumbnailStorageKey,
		ContentType:         p.ContentType,
		SizeBytes:           p.SizeBytes,
		FileName:            p.FileName,
		CreatedAt:           time.Now(),
	}
	r.photos[photo.ID] = photo
	return photo, nil
}

func (r *fakeRepo) PhotoStorageKeyExists(_ context.Context, storageKey string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.errOn["PhotoStorageKeyExists"]; err != nil {
		return false, err
	}
	for _, p := range r.photos {
		if p.StorageKey == storageKey {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) GetPhoto(_ context.Context, id, tenantID uuid.UUID) (repository.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.photos[id]
	if !ok || p.TenantID != tenantID {
		return repository.Photo{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) ListPhotosByEntity(_ context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]repository.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Photo
	for _, p := range r.photos {
		if p.TenantID == tenantID && p.EntityType == entityType && p.EntityID == entityID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) DeletePhoto(_ context.Context, id, tenantID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.photos[id]; !ok || p.TenantID != tenantID {
		return repository.ErrNotFound
	}
	delete(r.photos, id)
	return nil
}

func (r *fakeRepo) CreateReceipt(_ context.Context, p repository.CreateReceiptParams) (repository.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.receipts {
		if existing.StorageKey == p.StorageKey {
			return repository.Receipt{}, repository.ErrDuplicate
		}
	}
	rc := repository.Receipt{
		ID:          uuid.New(),
		TenantID:    p.TenantID,
		StorageKey:  p.StorageKey,
		ContentType: p.ContentType,
		SizeBytes:   p.SizeBytes,
		FileName:    p.FileName,
		CreatedAt:   time.Now(),
	}
	r.receipts[rc.ID] = rc
	return rc, nil
}

func (r *fakeRepo) GetReceipt(_ context.Context, id, tenantID uuid.UUID) (repository.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rc, ok := r.receipts[id]
	if !ok || rc.TenantID != tenantID {
		return repository.Receipt{}, repository.ErrNotFound
	}
	return rc, nil
}

func (r *fakeRepo) RecordThumbnailAttempt(_ context.Context, id, tenantID uuid.UUID, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rc, ok := r.receipts[id]
	if !ok || rc.TenantID != tenantID {
		return repository.ErrNotFound
	}
	rc.ThumbnailAttempts++
	if key != nil {
		rc.ThumbnailStorageKey = key
	}
	r.receipts[id] = rc
	r.attempts = append(r.attempts, key)
	return nil
}

type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) events() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.published...)
}
