package service

import (
	"context"
	"testing"

	"property_portal_backend/internal/events"
	"property_portal_backend/internal/media/repository"
	"property_portal_backend/internal/media/transport"
	"property_portal_backend/platform/apperr"
	"property_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	repo       *fakeRepo
	store      *fakeStore
	transfer   *fakeTransfer
	transcoder *fakeTranscoder
	bus        *recordingBus
	svc        *Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:       newFakeRepo(),
		store:      &fakeStore{},
		transfer:   newFakeTransfer([]byte("src")),
		transcoder: &fakeTranscoder{},
		bus:        &recordingBus{},
	}
	f.svc = New(Deps{
		Repo:       f.repo,
		Store:      f.store,
		Transfer:   f.transfer,
		Transcoder: f.transcoder,
		Rasterizer: &fakeRasterizer{},
		EventBus:   f.bus,
		Log:        logger.Discard(),
	})
	return f
}

func tenantKey(rest string) string {
	return testTenant.String() + "/" + rest
}

func TestConfirmPhotoPersistsRecord(t *testing.T) {
	f := newServiceFixture()
	entityID := uuid.New()

	resp, err := f.svc.ConfirmPhoto(context.Background(), testTenant, transport.ConfirmPhotoRequest{
		EntityType:          "property",
		EntityID:            entityID,
		StorageKey:          tenantKey("properties/2026/a.jpg"),
		ThumbnailStorageKey: tenantKey("properties/2026/a_thumb.jpg"),
		ContentType:         "image/jpeg",
		FileSizeBytes:       100,
		FileName:            "../kitchen.jpg",
	})

	require.NoError(t, err)
	require.NotNil(t, resp.ThumbnailStorageKey)
	assert.Equal(t, tenantKey("properties/2026/a_thumb.jpg"), *resp.ThumbnailStorageKey)
	assert.Equal(t, "kitchen.jpg", resp.FileName)
	assert.Equal(t, "property", resp.EntityType)
	assert.Len(t, f.repo.photos, 1)
}

func TestConfirmPhotoPersistsWithoutThumbnail(t *testing.T) {
	f := newServiceFixture()
	f.transcoder.err = errBoom

	resp, err := f.svc.ConfirmPhoto(context.Background(), testTenant, transport.ConfirmPhotoRequest{
		EntityType:          "vendor",
		EntityID:            uuid.New(),
		StorageKey:          tenantKey("vendors/2026/a.png"),
		ThumbnailStorageKey: tenantKey("vendors/2026/a_thumb.jpg"),
		ContentType:         "image/png",
		FileSizeBytes:       100,
	})

	require.NoError(t, err)
	assert.Nil(t, resp.ThumbnailStorageKey)
	assert.Len(t, f.repo.photos, 1)
}

func TestConfirmPhotoRejectsForeignTenantKey(t *testing.T) {
	f := newServiceFixture()
	other := uuid.New().String()

	_, err := f.svc.ConfirmPhoto(context.Background(), testTenant, transport.ConfirmPhotoRequest{
		EntityType:          "property",
		EntityID:            uuid.New(),
		StorageKey:          other + "/properties/2026/a.jpg",
		ThumbnailStorageKey: other + "/properties/2026/a_thumb.jpg",
		ContentType:         "image/jpeg",
		FileSizeBytes:       1,
	})

	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Empty(t, f.repo.photos)
	assert.Empty(t, f.store.downloadCalls)
}

func TestConfirmPhotoRejectsMismatchedKeys(t *testing.T) {
	f := newServiceFixture()
	base := transport.ConfirmPhotoRequest{
		EntityType:          "property",
		EntityID:            uuid.New(),
		StorageKey:          tenantKey("properties/2026/a.jpg"),
		ThumbnailStorageKey: tenantKey("properties/2026/a_thumb.jpg"),
		ContentType:         "image/jpeg",
		FileSizeBytes:       1,
	}

	wrongThumb := base
	wrongThumb.ThumbnailStorageKey = tenantKey("properties/2026/b_thumb.jpg")
	_, err := f.svc.ConfirmPhoto(context.Background(), testTenant, wrongThumb)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	wrongEntity := base
	wrongEntity.EntityType = "user"
	_, err = f.svc.ConfirmPhoto(context.Background(), testTenant, wrongEntity)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	traversal := base
	traversal.StorageKey = tenantKey("properties/../receipts/a.jpg")
	_, err = f.svc.ConfirmPhoto(context.Background(), testTenant, traversal)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func confirmReceipt(t *testing.T, f *serviceFixture) transport.ReceiptResponse {
	t.Helper()
	resp, err := f.svc.ConfirmReceipt(context.Background(), testTenant, transport.ConfirmReceiptRequest{
		StorageKey:    tenantKey("receipts/2026/r.pdf"),
		ContentType:   "application/pdf",
		FileSizeBytes: 500,
	})
	require.NoError(t, err)
	return resp
}

func TestConfirmReceiptAttachesThumbnail(t *testing.T) {
	f := newServiceFixture()

	resp := confirmReceipt(t, f)

	require.NotNil(t, resp.ThumbnailStorageKey)
	assert.Equal(t, tenantKey("receipts/2026/r_thumb.jpg"), *resp.ThumbnailStorageKey)
	assert.Empty(t, f.bus.events())
	stored := f.repo.receipts[resp.ID]
	assert.Equal(t, 1, stored.ThumbnailAttempts)
}

func TestConfirmReceiptPublishesFailure(t *testing.T) {
	f := newServiceFixture()
	f.transfer.downloadErr = errBoom

	resp := confirmReceipt(t, f)

	assert.Nil(t, resp.ThumbnailStorageKey)
	published := f.bus.events()
	require.Len(t, published, 1)
	failed, ok := published[0].(events.ReceiptThumbnailFailed)
	require.True(t, ok)
	assert.Equal(t, resp.ID, failed.ReceiptID)
	assert.Equal(t, testTenant, failed.TenantID)
	assert.Equal(t, string(StageDownload), failed.Stage)
	assert.Equal(t, "application/pdf", failed.ContentType)
}

func TestRegenerateReceiptThumbnail(t *testing.T) {
	f := newServiceFixture()
	f.transfer.downloadErr = errBoom
	resp := confirmReceipt(t, f)

	f.transfer.downloadErr = nil
	result, err := f.svc.RegenerateReceiptThumbnail(context.Background(), testTenant, resp.ID)

	require.NoError(t, err)
	assert.True(t, result.OK())
	stored := f.repo.receipts[resp.ID]
	require.NotNil(t, stored.ThumbnailStorageKey)
	assert.Equal(t, 2, stored.ThumbnailAttempts)

	published := f.bus.events()
	require.Len(t, published, 2)
	assert.IsType(t, events.ReceiptThumbnailGenerated{}, published[1])

	again, err := f.svc.RegenerateReceiptThumbnail(context.Background(), testTenant, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Key, again.Key)
	assert.Equal(t, 2, f.repo.receipts[resp.ID].ThumbnailAttempts, "existing thumbnail is not regenerated")
}

func TestRegenerateReceiptThumbnailNotFound(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.RegenerateReceiptThumbnail(context.Background(), testTenant, uuid.New())

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeletePhotoThumbnailIsBestEffort(t *testing.T) {
	f := newServiceFixture()
	photo, err := f.svc.ConfirmPhoto(context.Background(), testTenant, transport.ConfirmPhotoRequest{
		EntityType:          "workorder",
		EntityID:            uuid.New(),
		StorageKey:          tenantKey("workorders/2026/w.gif"),
		ThumbnailStorageKey: tenantKey("workorders/2026/w_thumb.jpg"),
		ContentType:         "image/gif",
		FileSizeBytes:       10,
	})
	require.NoError(t, err)
	f.store.deleteErr = map[string]error{tenantKey("workorders/2026/w_thumb.jpg"): errBoom}

	require.NoError(t, f.svc.DeletePhoto(context.Background(), testTenant, photo.ID))

	assert.Equal(t, []string{tenantKey("workorders/2026/w.gif")}, f.store.deleted)
	assert.Empty(t, f.repo.photos)
	require.Len(t, f.bus.events(), 1)
	assert.IsType(t, events.PhotoDeleted{}, f.bus.events()[0])
}

func TestDeletePhotoPrimaryFailureKeepsRecord(t *testing.T) {
	f := newServiceFixture()
	photo, err := f.svc.ConfirmPhoto(context.Background(), testTenant, transport.ConfirmPhotoRequest{
		EntityType:          "property",
		EntityID:            uuid.New(),
		StorageKey:          tenantKey("properties/2026/p.jpg"),
		ThumbnailStorageKey: tenantKey("properties/2026/p_thumb.jpg"),
		ContentType:         "image/jpeg",
		FileSizeBytes:       10,
	})
	require.NoError(t, err)
	f.store.deleteErr = map[string]error{tenantKey("properties/2026/p.jpg"): errBoom}

	err = f.svc.DeletePhoto(context.Background(), testTenant, photo.ID)

	assert.True(t, apperr.Is(err, apperr.KindStorage))
	assert.Len(t, f.repo.photos, 1)
}

func TestReceiptDownloadURLs(t *testing.T) {
	f := newServiceFixture()
	resp := confirmReceipt(t, f)

	urls, err := f.svc.ReceiptDownloadURLs(context.Background(), testTenant, resp.ID)

	require.NoError(t, err)
	assert.Equal(t, "https://store.test/get/"+resp.StorageKey, urls.DownloadURL)
	require.NotNil(t, urls.ThumbnailDownloadURL)

	_, err = f.svc.ReceiptDownloadURLs(context.Background(), uuid.New(), resp.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestConfirmTwiceReturnsConflict(t *testing.T) {
	f := newServiceFixture()
	photoReq := transport.ConfirmPhotoRequest{
		EntityType:          "property",
		EntityID:            uuid.New(),
		StorageKey:          tenantKey("properties/2026/a.jpg"),
		ThumbnailStorageKey: tenantKey("properties/2026/a_thumb.jpg"),
		ContentType:         "image/jpeg",
		FileSizeBytes:       100,
	}
	_, err := f.svc.ConfirmPhoto(context.Background(), testTenant, photoReq)
	require.NoError(t, err)
	require.Equal(t, 1, f.transcoder.calls)

	_, err = f.svc.ConfirmPhoto(context.Background(), testTenant, photoReq)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 1, f.transcoder.calls, "a repeated confirm must not rewrite the thumbnail")
	assert.Len(t, f.repo.photos, 1)

	confirmReceipt(t, f)
	_, err = f.svc.ConfirmReceipt(context.Background(), testTenant, transport.ConfirmReceiptRequest{
		StorageKey:    tenantKey("receipts/2026/r.pdf"),
		ContentType:   "application/pdf",
		FileSizeBytes: 500,
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Len(t, f.repo.receipts, 1)
}

func TestConfirmPhotoMapsInsertRaceToConflict(t *testing.T) {
	f := newServiceFixture()
	f.repo.errOn["CreatePhoto"] = repository.ErrDuplicate

	_, err := f.svc.ConfirmPhoto(context.Background(), testTenant, transport.ConfirmPhotoRequest{
		EntityType:          "vendor",
		EntityID:            uuid.New(),
		StorageKey:          tenantKey("vendors/2026/v.png"),
		ThumbnailStorageKey: tenantKey("vendors/2026/v_thumb.jpg"),
		ContentType:         "image/png",
		FileSizeBytes:       100,
	})

	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestConfirmRejectsSizeOutsideLimit(t *testing.T) {
	f := newServiceFixture()

	for _, size := range []int64{0, -1, DefaultMaxUploadBytes + 1} {
		_, err := f.svc.ConfirmPhoto(context.Background(), testTenant, transport.ConfirmPhotoRequest{
			EntityType:          "property",
			EntityID:            uuid.New(),
			StorageKey:          tenantKey("properties/2026/a.jpg"),
			ThumbnailStorageKey: tenantKey("properties/2026/a_thumb.jpg"),
			ContentType:         "image/jpeg",
			FileSizeBytes:       size,
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation), "photo size %d", size)

		_, err = f.svc.ConfirmReceipt(context.Background(), testTenant, transport.ConfirmReceiptRequest{
			StorageKey:    tenantKey("receipts/2026/r.pdf"),
			ContentType:   "application/pdf",
			FileSizeBytes: size,
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation), "receipt size %d", size)
	}

	assert.Empty(t, f.repo.photos)
	assert.Empty(t, f.repo.receipts)
	assert.Zero(t, f.transcoder.calls)
}

func TestConfirmRejectsExtensionContentTypeMismatch(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.ConfirmReceipt(context.Background(), testTenant, transport.ConfirmReceiptRequest{
		StorageKey:    tenantKey("receipts/2026/r.jpg"),
		ContentType:   "application/pdf",
		FileSizeBytes: 500,
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.ConfirmPhoto(context.Background(), testTenant, transport.ConfirmPhotoRequest{
		EntityType:          "property",
		EntityID:            uuid.New(),
		StorageKey:          tenantKey("properties/2026/a.png"),
		ThumbnailStorageKey: tenantKey("properties/2026/a_thumb.jpg"),
		ContentType:         "image/jpeg",
		FileSizeBytes:       100,
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Empty(t, f.repo.receipts)
	assert.Empty(t, f.repo.photos)
	assert.Empty(t, f.bus.events())
}
