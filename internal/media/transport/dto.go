// Package transport defines the JSON contract of the media endpoints.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// PhotoUploadURLRequest asks for a presigned photo upload URL.
type PhotoUploadURLRequest struct {
	EntityType    string    `json:"entityType" validate:"required,media_entity"`
	EntityID      uuid.UUID `json:"entityId" validate:"required"`
	ContentType   string    `json:"contentType" validate:"required,max=100"`
	FileSizeBytes int64     `json:"fileSizeBytes" validate:"required,min=1"`
	FileName      string    `json:"fileName" validate:"omitempty,max=255"`
}

// ReceiptUploadURLRequest asks for a presigned receipt upload URL.
type ReceiptUploadURLRequest struct {
	ContentType   string `json:"contentType" validate:"required,max=100"`
	FileSizeBytes int64  `json:"fileSizeBytes" validate:"required,min=1"`
	FileName      string `json:"fileName" validate:"omitempty,max=255"`
}

// UploadURLResponse returns the presigned URL and the reserved storage keys.
type UploadURLResponse struct {
	UploadURL           string    `json:"uploadUrl"`
	StorageKey          string    `json:"storageKey"`
	ThumbnailStorageKey string    `json:"thumbnailStorageKey,omitempty"`
	ExpiresAt           time.Time `json:"expiresAt"`
}

// ConfirmPhotoRequest confirms a completed photo upload.
type ConfirmPhotoRequest struct {
	EntityType          string    `json:"entityType" validate:"required,media_entity"`
	EntityID            uuid.UUID `json:"entityId" validate:"required"`
	StorageKey          string    `json:"storageKey" validate:"required,max=500"`
	ThumbnailStorageKey string    `json:"thumbnailStorageKey" validate:"required,max=500"`
	ContentType         string    `json:"contentType" validate:"required,max=100"`
	FileSizeBytes       int64     `json:"fileSizeBytes" validate:"required,min=1"`
	FileName            string    `json:"fileName" validate:"omitempty,max=255"`
}

// ConfirmReceiptRequest confirms a completed receipt upload.
type ConfirmReceiptRequest struct {
	StorageKey    string `json:"storageKey" validate:"required,max=500"`
	ContentType   string `json:"contentType" validate:"required,max=100"`
	FileSizeBytes int64  `json:"fileSizeBytes" validate:"required,min=1"`
	FileName      string `json:"fileName" validate:"omitempty,max=255"`
}

// PhotoResponse is a persisted photo.
type PhotoResponse struct {
	ID                  uuid.UUID `json:"id"`
	EntityType          string    `json:"entityType"`
	EntityID            uuid.UUID `json:"entityId"`
	StorageKey          string    `json:"storageKey"`
	ThumbnailStorageKey *string   `json:"thumbnailStorageKey"`
	ContentType         string    `json:"contentType"`
	FileSizeBytes       int64     `json:"fileSizeBytes"`
	FileName            string    `json:"fileName,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

// ReceiptResponse is a persisted receipt.
type ReceiptResponse struct {
	ID                  uuid.UUID `json:"id"`
	StorageKey          string    `json:"storageKey"`
	ThumbnailStorageKey *string   `json:"thumbnailStorageKey"`
	ContentType         string    `json:"contentType"`
	FileSizeBytes       int64     `json:"fileSizeBytes"`
	FileName            string    `json:"fileName,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

// ListPhotosRequest filters photos by owning entity.
type ListPhotosRequest struct {
	EntityType string    `form:"entityType" validate:"required,media_entity"`
	EntityID   uuid.UUID `form:"entityId" validate:"required"`
}

// DownloadURLResponse returns presigned download URLs for a file and its thumbnail.
type DownloadURLResponse struct {
	DownloadURL          string  `json:"downloadUrl"`
	ThumbnailDownloadURL *string `json:"thumbnailDownloadUrl"`
}
