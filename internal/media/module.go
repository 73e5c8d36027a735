// Package media provides the photo and receipt media bounded context module.
package media

import (
	"context"

	"property_portal_backend/internal/adapters/storage"
	"property_portal_backend/internal/events"
	apphttp "property_portal_backend/internal/http"
	"property_portal_backend/internal/media/handler"
	"property_portal_backend/internal/media/rasterize"
	"property_portal_backend/internal/media/repository"
	"property_portal_backend/internal/media/service"
	"property_portal_backend/internal/media/transcode"
	"property_portal_backend/internal/media/transfer"
	"property_portal_backend/internal/media/transport"
	"property_portal_backend/platform/config"
	"property_portal_backend/platform/logger"
	"property_portal_backend/platform/metrics"
	"property_portal_backend/platform/validator"

	"github.com/google/uuid"
)

// ThumbnailRetryScheduler queues a later thumbnail attempt for a receipt.
type ThumbnailRetryScheduler interface {
	ScheduleReceiptThumbnailRetry(ctx context.Context, tenantID, receiptID uuid.UUID, storageKey string) error
}

// Module is the media bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
	retries    ThumbnailRetryScheduler
	log        *logger.Logger
}

// NewModule creates and initializes the media module with all its dependencies.
func NewModule(
	db repository.DB,
	store storage.ObjectStore,
	cfg config.MediaConfig,
	eventBus events.Bus,
	observer metrics.Observer,
	val *validator.Validator,
	log *logger.Logger,
) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}

	repo := repository.New(db)
	svc := service.New(service.Deps{
		Repo:       repo,
		Store:      store,
		Transfer:   transfer.New(cfg.GetMediaTransferTimeout(), 2*cfg.GetMediaMaxUploadBytes()),
		Transcoder: transcode.New(),
		Rasterizer: rasterize.New(rasterize.DefaultDPI),
		EventBus:   eventBus,
		Metrics:    observer,
		Log:        log,
		MaxBytes:   cfg.GetMediaMaxUploadBytes(),
	})

	return &Module{
		handler:    handler.New(svc, val),
		service:    svc,
		repository: repo,
		log:        log,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "media"
}

// Service returns the service layer for workers and tools.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the persistence layer for workers and tools.
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// SetRetryScheduler enables background retries of failed receipt thumbnails.
func (m *Module) SetRetryScheduler(s ThumbnailRetryScheduler) {
	m.retries = s
}

// RegisterHandlers subscribes the module to its own domain events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ReceiptThumbnailFailed{}.EventName(), events.HandlerFunc(m.handleThumbnailFailed))
}

func (m *Module) handleThumbnailFailed(ctx context.Context, event events.Event) error {
	e, ok := event.(events.ReceiptThumbnailFailed)
	if !ok {
		return nil
	}
	if m.retries == nil {
		m.log.WithContext(ctx).Warn("receipt thumbnail retry not scheduled; no scheduler configured",
			"receipt_id", e.ReceiptID, "stage", e.Stage)
		return nil
	}
	return m.retries.ScheduleReceiptThumbnailRetry(ctx, e.TenantID, e.ReceiptID, e.StorageKey)
}

// RegisterRoutes mounts media routes on the provided router context.
func (m *Module) RegisterRoutes(groups *apphttp.RouterContext) {
	m.handler.RegisterRoutes(groups.Protected.Group("/media"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
