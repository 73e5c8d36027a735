package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"property_portal_backend/internal/adapters/storage"
	"property_portal_backend/internal/events"
	"property_portal_backend/internal/media/keys"
	"property_portal_backend/internal/media/repository"
	"property_portal_backend/internal/media/transport"
	"property_portal_backend/platform/apperr"
	"property_portal_backend/platform/logger"
	"property_portal_backend/platform/metrics"
	"property_portal_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgPhotoNotFound   = "photo not found"
	msgReceiptNotFound = "receipt not found"
	msgPhotoExists     = "photo already confirmed"
	msgReceiptExists   = "receipt already confirmed"
)

// Repository is the persistence the media service needs.
type Repository interface {
	CreatePhoto(ctx context.Context, params repository.CreatePhotoParams) (repository.Photo, error)
	PhotoStorageKeyExists(ctx context.Context, storageKey string) (bool, error)
	GetPhoto(ctx context.Context, id, tenantID uuid.UUID) (repository.Photo, error)
	ListPhotosByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]repository.Photo, error)
	DeletePhoto(ctx context.Context, id, tenantID uuid.UUID) error
	CreateReceipt(ctx context.Context, params repository.CreateReceiptParams) (repository.Receipt, error)
	GetReceipt(ctx context.Context, id, tenantID uuid.UUID) (repository.Receipt, error)
	RecordThumbnailAttempt(ctx context.Context, id, tenantID uuid.UUID, thumbnailKey *string) error
}

// Service ties the upload broker and both thumbnail pipelines to persistence.
type Service struct {
	repo     Repository
	store    storage.ObjectStore
	broker   *UploadBroker
	photos   *PhotoConfirmation
	receipts *ReceiptThumbnails
	eventBus events.Bus
	metrics  metrics.Observer
	log      *logger.Logger
}

// Deps groups the collaborators of Service.
type Deps struct {
	Repo       Repository
	Store      storage.ObjectStore
	Transfer   Transfer
	Transcoder Transcoder
	Rasterizer Rasterizer
	EventBus   events.Bus
	Metrics    metrics.Observer
	Log        *logger.Logger
	MaxBytes   int64
}

// New creates the media service.
func New(d Deps) *Service {
	observer := d.Metrics
	if observer == nil {
		observer = metrics.Nop{}
	}
	return &Service{
		repo:     d.Repo,
		store:    d.Store,
		broker:   NewUploadBroker(d.Store, d.MaxBytes, observer),
		photos:   NewPhotoConfirmation(d.Store, d.Transfer, d.Transcoder, observer, d.Log),
		receipts: NewReceiptThumbnails(d.Store, d.Transfer, d.Transcoder, d.Rasterizer, observer, d.Log),
		eventBus: d.EventBus,
		metrics:  observer,
		log:      d.Log,
	}
}

// RequestPhotoUpload issues an upload URL for a photo of an entity.
func (s *Service) RequestPhotoUpload(ctx context.Context, tenantID uuid.UUID, req transport.PhotoUploadURLRequest) (transport.UploadURLResponse, error) {
	entity, err := keys.ParseEntityType(req.EntityType)
	if err != nil {
		return transport.UploadURLResponse{}, apperr.Validation(err.Error())
	}
	resp, err := s.broker.GenerateUploadURL(ctx, tenantID, PhotoUploadRequest{
		EntityType:    entity,
		EntityID:      req.EntityID,
		ContentType:   req.ContentType,
		FileSizeBytes: req.FileSizeBytes,
		FileName:      req.FileName,
	})
	if err != nil {
		return transport.UploadURLResponse{}, err
	}
	return toUploadURLResponse(resp), nil
}

// RequestReceiptUpload issues an upload URL for a receipt image or PDF.
func (s *Service) RequestReceiptUpload(ctx context.Context, tenantID uuid.UUID, req transport.ReceiptUploadURLRequest) (transport.UploadURLResponse, error) {
	resp, err := s.broker.GenerateReceiptUploadURL(ctx, tenantID, req.ContentType, req.FileSizeBytes)
	if err != nil {
		return transport.UploadURLResponse{}, err
	}
	return toUploadURLResponse(resp), nil
}

// ConfirmPhoto checks key ownership, makes one thumbnail attempt and stores the photo.
func (s *Service) ConfirmPhoto(ctx context.Context, tenantID uuid.UUID, req transport.ConfirmPhotoRequest) (transport.PhotoResponse, error) {
	entity, err := keys.ParseEntityType(req.EntityType)
	if err != nil {
		return transport.PhotoResponse{}, apperr.Validation(err.Error())
	}
	if err := checkKeyOwnership(tenantID, entity, req.StorageKey); err != nil {
		return transport.PhotoResponse{}, err
	}
	if req.ThumbnailStorageKey != keys.DeriveThumbnailKey(req.StorageKey) {
		return transport.PhotoResponse{}, apperr.Validation("thumbnailStorageKey does not match storageKey")
	}
	ext, ok := keys.PhotoExtension(req.ContentType)
	if !ok {
		return transport.PhotoResponse{}, apperr.Validation("content type is not allowed for photos")
	}
	if err := s.checkUpload(req.StorageKey, ext, req.FileSizeBytes); err != nil {
		return transport.PhotoResponse{}, err
	}

	exists, err := s.repo.PhotoStorageKeyExists(ctx, req.StorageKey)
	if err != nil {
		return transport.PhotoResponse{}, err
	}
	if exists {
		return transport.PhotoResponse{}, apperr.Conflict(msgPhotoExists)
	}

	record, err := s.photos.ConfirmUpload(ctx, req.StorageKey, req.ThumbnailStorageKey, req.ContentType, req.FileSizeBytes)
	if err != nil {
		return transport.PhotoResponse{}, err
	}

	photo, err := s.repo.CreatePhoto(ctx, repository.CreatePhotoParams{
		TenantID:            tenantID,
		EntityType:          entity.String(),
		EntityID:            req.EntityID,
		StorageKey:          record.StorageKey,
		ThumbnailStorageKey: record.ThumbnailStorageKey,
		ContentType:         record.ContentType,
		SizeBytes:           record.FileSizeBytes,
		FileName:            sanitize.FileName(req.FileName),
	})
	if err != nil {
		return transport.PhotoResponse{}, mapDuplicate(err, msgPhotoExists)
	}
	return toPhotoResponse(photo), nil
}

// ListPhotos returns the photos attached to an entity.
func (s *Service) ListPhotos(ctx context.Context, tenantID uuid.UUID, req transport.ListPhotosRequest) ([]transport.PhotoResponse, error) {
	entity, err := keys.ParseEntityType(req.EntityType)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	photos, err := s.repo.ListPhotosByEntity(ctx, tenantID, entity.String(), req.EntityID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.PhotoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, toPhotoResponse(p))
	}
	return out, nil
}

// PhotoDownloadURLs issues download URLs for a photo and its thumbnail.
func (s *Service) PhotoDownloadURLs(ctx context.Context, tenantID, photoID uuid.UUID) (transport.DownloadURLResponse, error) {
	photo, err := s.repo.GetPhoto(ctx, photoID, tenantID)
	if err != nil {
		return transport.DownloadURLResponse{}, mapNotFound(err, msgPhotoNotFound)
	}
	return s.downloadURLs(ctx, photo.StorageKey, photo.ThumbnailStorageKey)
}

// DeletePhoto removes the photo objects and record. The original must be
// deleted; the thumbnail is removed best-effort.
func (s *Service) DeletePhoto(ctx context.Context, tenantID, photoID uuid.UUID) error {
	photo, err := s.repo.GetPhoto(ctx, photoID, tenantID)
	if err != nil {
		return mapNotFound(err, msgPhotoNotFound)
	}

	if err := s.store.Delete(ctx, photo.StorageKey); err != nil {
		return apperr.Storage("failed to delete photo", err)
	}
	if photo.ThumbnailStorageKey != nil {
		if err := s.store.Delete(ctx, *photo.ThumbnailStorageKey); err != nil {
			s.log.WithContext(ctx).Warn("photo thumbnail delete failed",
				"photo_id", photo.ID, "storage_key", *photo.ThumbnailStorageKey, "error", err)
		}
	}

	if err := s.repo.DeletePhoto(ctx, photo.ID, tenantID); err != nil {
		return mapNotFound(err, msgPhotoNotFound)
	}

	s.eventBus.Publish(ctx, events.PhotoDeleted{
		BaseEvent:  events.NewBaseEvent(),
		PhotoID:    photo.ID,
		TenantID:   tenantID,
		EntityType: photo.EntityType,
		EntityID:   photo.EntityID,
	})
	return nil
}

// ConfirmReceipt stores a receipt and makes one synchronous thumbnail attempt.
// A failed attempt is recorded and announced with ReceiptThumbnailFailed so a
// retry can be scheduled; it never fails the confirmation.
func (s *Service) ConfirmReceipt(ctx context.Context, tenantID uuid.UUID, req transport.ConfirmReceiptRequest) (transport.ReceiptResponse, error) {
	if err := checkKeyOwnership(tenantID, keys.EntityReceipt, req.StorageKey); err != nil {
		return transport.ReceiptResponse{}, err
	}
	ext, ok := keys.ReceiptExtension(req.ContentType)
	if !ok {
		return transport.ReceiptResponse{}, apperr.Validation("content type is not allowed for receipts")
	}
	if err := s.checkUpload(req.StorageKey, ext, req.FileSizeBytes); err != nil {
		return transport.ReceiptResponse{}, err
	}

	receipt, err := s.repo.CreateReceipt(ctx, repository.CreateReceiptParams{
		TenantID:    tenantID,
		StorageKey:  req.StorageKey,
		ContentType: storage.NormalizeContentType(req.ContentType),
		SizeBytes:   req.FileSizeBytes,
		FileName:    sanitize.FileName(req.FileName),
	})
	if err != nil {
		return transport.ReceiptResponse{}, mapDuplicate(err, msgReceiptExists)
	}

	result := s.receipts.GenerateThumbnail(ctx, receipt.StorageKey, receipt.ContentType)
	if err := s.repo.RecordThumbnailAttempt(ctx, receipt.ID, tenantID, result.KeyPtr()); err != nil {
		s.log.DatabaseError("record receipt thumbnail attempt", err)
	} else {
		receipt.ThumbnailAttempts++
	}

	if result.OK() {
		receipt.ThumbnailStorageKey = result.KeyPtr()
	} else {
		s.publishThumbnailFailed(ctx, receipt, result)
	}
	return toReceiptResponse(receipt), nil
}

// ReceiptDownloadURLs issues download URLs for a receipt and its thumbnail.
func (s *Service) ReceiptDownloadURLs(ctx context.Context, tenantID, receiptID uuid.UUID) (transport.DownloadURLResponse, error) {
	receipt, err := s.repo.GetReceipt(ctx, receiptID, tenantID)
	if err != nil {
		return transport.DownloadURLResponse{}, mapNotFound(err, msgReceiptNotFound)
	}
	return s.downloadURLs(ctx, receipt.StorageKey, receipt.ThumbnailStorageKey)
}

// RegenerateReceiptThumbnail makes another thumbnail attempt for a stored
// receipt. The error is non-nil only when the receipt cannot be loaded or the
// attempt cannot be recorded; pipeline failures are reported in the result.
func (s *Service) RegenerateReceiptThumbnail(ctx context.Context, tenantID, receiptID uuid.UUID) (ThumbnailResult, error) {
	receipt, err := s.repo.GetReceipt(ctx, receiptID, tenantID)
	if err != nil {
		return ThumbnailResult{}, mapNotFound(err, msgReceiptNotFound)
	}
	if receipt.ThumbnailStorageKey != nil {
		return ThumbnailResult{Key: *receipt.ThumbnailStorageKey}, nil
	}

	result := s.receipts.GenerateThumbnail(ctx, receipt.StorageKey, receipt.ContentType)
	if err := s.repo.RecordThumbnailAttempt(ctx, receipt.ID, tenantID, result.KeyPtr()); err != nil {
		return result, err
	}

	if result.OK() {
		s.eventBus.Publish(ctx, events.ReceiptThumbnailGenerated{
			BaseEvent:           events.NewBaseEvent(),
			ReceiptID:           receipt.ID,
			TenantID:            tenantID,
			ThumbnailStorageKey: result.Key,
		})
	}
	return result, nil
}

func (s *Service) publishThumbnailFailed(ctx context.Context, receipt repository.Receipt, result ThumbnailResult) {
	reason := ""
	if result.Err != nil {
		reason = result.Err.Error()
	}
	s.eventBus.Publish(ctx, events.ReceiptThumbnailFailed{
		BaseEvent:   events.NewBaseEvent(),
		ReceiptID:   receipt.ID,
		TenantID:    receipt.TenantID,
		StorageKey:  receipt.StorageKey,
		ContentType: receipt.ContentType,
		Stage:       string(result.Stage),
		Reason:      reason,
	})
}

func (s *Service) downloadURLs(ctx context.Context, storageKey string, thumbnailKey *string) (transport.DownloadURLResponse, error) {
	url, err := s.store.IssueDownloadURL(ctx, storageKey)
	s.metrics.RecordPresign("download", err)
	if err != nil {
		return transport.DownloadURLResponse{}, apperr.Storage("failed to issue download url", err)
	}

	resp := transport.DownloadURLResponse{DownloadURL: url}
	if thumbnailKey != nil {
		thumbURL, err := s.store.IssueDownloadURL(ctx, *thumbnailKey)
		s.metrics.RecordPresign("download", err)
		if err != nil {
			s.log.WithContext(ctx).Warn("thumbnail download url failed", "storage_key", *thumbnailKey, "error", err)
		} else {
			resp.ThumbnailDownloadURL = &thumbURL
		}
	}
	return resp, nil
}

// checkKeyOwnership rejects keys outside {tenant}/{entityPath}/.
func checkKeyOwnership(tenantID uuid.UUID, entity keys.EntityType, storageKey string) error {
	if err := storage.ValidateKey(storageKey); err != nil {
		return apperr.Validation(err.Error())
	}
	segment, err := entity.PathSegment()
	if err != nil {
		return apperr.Validation(err.Error())
	}
	if !keys.BelongsToTenant(storageKey, tenantID) {
		return apperr.Forbidden("storage key does not belong to tenant")
	}
	if !strings.HasPrefix(storageKey, keys.TenantPrefix(tenantID)+segment+"/") {
		return apperr.Validation("storage key does not match entity type")
	}
	return nil
}

// checkUpload rejects sizes outside the upload limit and keys whose extension
// disagrees with the declared content type.
func (s *Service) checkUpload(storageKey, ext string, size int64) error {
	if size <= 0 {
		return apperr.Validation("fileSizeBytes must be greater than 0")
	}
	if limit := s.broker.MaxUploadBytes(); size > limit {
		return apperr.Validation(fmt.Sprintf("file size %d bytes exceeds maximum of %d bytes", size, limit))
	}
	if path.Ext(storageKey) != ext {
		return apperr.Validation("storage key extension does not match content type")
	}
	return nil
}

func mapDuplicate(err error, msg string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Conflict(msg)
	}
	return err
}

func mapNotFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

func toUploadURLResponse(r PhotoUploadResponse) transport.UploadURLResponse {
	return transport.UploadURLResponse{
		UploadURL:           r.UploadURL,
		StorageKey:          r.StorageKey,
		ThumbnailStorageKey: r.ThumbnailStorageKey,
		ExpiresAt:           r.ExpiresAt,
	}
}

func toPhotoResponse(p repository.Photo) transport.PhotoResponse {
	return transport.PhotoResponse{
		ID:                  p.ID,
		EntityType:          p.EntityType,
		EntityID:            p.EntityID,
		StorageKey:          p.StorageKey,
		ThumbnailStorageKey: p.ThumbnailStorageKey,
		ContentType:         p.ContentType,
		FileSizeBytes:       p.SizeBytes,
		FileName:            p.FileName,
		CreatedAt:           p.CreatedAt,
	}
}

func toReceiptResponse(r repository.Receipt) transport.ReceiptResponse {
	return transport.ReceiptResponse{
		ID:                  r.ID,
		StorageKey:          r.StorageKey,
		ThumbnailStorageKey: r.ThumbnailStorageKey,
		ContentType:         r.ContentType,
		FileSizeBytes:       r.SizeBytes,
		FileName:            r.FileName,
		CreatedAt:           r.CreatedAt,
	}
}
