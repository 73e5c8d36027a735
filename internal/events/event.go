// Package events defines the media domain events. The bus itself lives in
// platform/events; its types are aliased here so modules import one package.
package events

import (
	"property_portal_backend/platform/events"
	"property_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// ReceiptThumbnailFailed is published when a confirmed receipt could not get a
// thumbnail on its synchronous attempt.
type ReceiptThumbnailFailed struct {
	BaseEvent
	ReceiptID   uuid.UUID `json:"receiptId"`
	TenantID    uuid.UUID `json:"tenantId"`
	StorageKey  string    `json:"storageKey"`
	ContentType string    `json:"contentType"`
	Stage       string    `json:"stage"`
	Reason      string    `json:"reason"`
}

func (e ReceiptThumbnailFailed) EventName() string { return "media.receipt.thumbnail_failed" }

// ReceiptThumbnailGenerated is published when a retry or backfill attaches a thumbnail.
type ReceiptThumbnailGenerated struct {
	BaseEvent
	ReceiptID           uuid.UUID `json:"receiptId"`
	TenantID            uuid.UUID `json:"tenantId"`
	ThumbnailStorageKey string    `json:"thumbnailStorageKey"`
}

func (e ReceiptThumbnailGenerated) EventName() string { return "media.receipt.thumbnail_generated" }

// PhotoDeleted is published after a photo record and its objects are removed.
type PhotoDeleted struct {
	BaseEvent
	PhotoID    uuid.UUID `json:"photoId"`
	TenantID   uuid.UUID `json:"tenantId"`
	EntityType string    `json:"entityType"`
	EntityID   uuid.UUID `json:"entityId"`
}

func (e PhotoDeleted) EventName() string { return "media.photo.deleted" }
