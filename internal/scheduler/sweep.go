package scheduler

import (
	"context"
	"time"

	"property_portal_backend/internal/media/repository"
	"property_portal_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultSweepInterval = 15 * time.Minute
	sweepBatchSize       = 100
)

// MissingThumbnailLister pages through receipts that still lack a thumbnail.
type MissingThumbnailLister interface {
	ListReceiptsMissingThumbnail(ctx context.Context, afterID uuid.UUID, maxAttempts, limit int) ([]repository.Receipt, error)
}

// ThumbnailSweep periodically re-schedules retries for receipts whose
// ReceiptThumbnailFailed event was lost, e.g. because Redis was down at confirm time.
type ThumbnailSweep struct {
	repo        MissingThumbnailLister
	scheduler   ThumbnailRetryScheduler
	log         *logger.Logger
	interval    time.Duration
	maxAttempts int
}

func NewThumbnailSweep(repo MissingThumbnailLister, scheduler ThumbnailRetryScheduler, log *logger.Logger, interval time.Duration, maxAttempts int) *ThumbnailSweep {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &ThumbnailSweep{
		repo:        repo,
		scheduler:   scheduler,
		log:         log,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

func (s *ThumbnailSweep) Run(ctx context.Context) {
	if s == nil || s.repo == nil || s.scheduler == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ThumbnailSweep) sweep(ctx context.Context) int {
	scheduled := 0
	cursor := uuid.Nil
	for {
		receipts, err := s.repo.ListReceiptsMissingThumbnail(ctx, cursor, s.maxAttempts, sweepBatchSize)
		if err != nil {
			s.log.Warn("thumbnail sweep list failed", "error", err)
			return scheduled
		}

		for _, rc := range receipts {
			if err := s.scheduler.ScheduleReceiptThumbnailRetry(ctx, rc.TenantID, rc.ID, rc.StorageKey); err != nil {
				s.log.Warn("thumbnail sweep schedule failed", "receipt_id", rc.ID, "error", err)
				continue
			}
			scheduled++
		}

		if len(receipts) < sweepBatchSize {
			break
		}
		cursor = receipts[len(receipts)-1].ID
	}

	if scheduled > 0 {
		s.log.Info("thumbnail sweep scheduled retries", "scheduled", scheduled)
	}
	return scheduled
}
