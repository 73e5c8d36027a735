package scheduler

import (
	"context"
	"errors"
	"fmt"

	"property_portal_backend/internal/email"
	"property_portal_backend/internal/media/service"
	"property_portal_backend/platform/apperr"
	"property_portal_backend/platform/config"
	"property_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ReceiptThumbnailRegenerator makes one more thumbnail attempt for a receipt.
type ReceiptThumbnailRegenerator interface {
	RegenerateReceiptThumbnail(ctx context.Context, tenantID, receiptID uuid.UUID) (service.ThumbnailResult, error)
}

type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	regenerator ReceiptThumbnailRegenerator
	alerts      email.Sender
	log         *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, regenerator ReceiptThumbnailRegenerator, alerts email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	w := &Worker{
		mux:         asynq.NewServeMux(),
		regenerator: regenerator,
		alerts:      alerts,
		log:         log,
	}
	w.server = asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(w.handleError),
	})

	w.mux.HandleFunc(TaskReceiptThumbnailRetry, w.handleReceiptThumbnailRetry)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleReceiptThumbnailRetry(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReceiptThumbnailRetryPayload(task)
	if err != nil {
		return fmt.Errorf("parse payload: %v: %w", err, asynq.SkipRetry)
	}

	receiptID, err := uuid.Parse(payload.ReceiptID)
	if err != nil {
		return fmt.Errorf("receipt id: %v: %w", err, asynq.SkipRetry)
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return fmt.Errorf("tenant id: %v: %w", err, asynq.SkipRetry)
	}

	result, err := w.regenerator.RegenerateReceiptThumbnail(ctx, tenantID, receiptID)
	if apperr.Is(err, apperr.KindNotFound) {
		w.log.Info("receipt gone; dropping thumbnail retry", "receipt_id", receiptID)
		return nil
	}
	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("thumbnail %s stage: %w", result.Stage, result.Err)
	}
	return nil
}

func (w *Worker) handleError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	w.log.WithContext(ctx).TaskFailed(task.Type(), retried, maxRetry, err)
	w.alertIfExhausted(ctx, task, err, retried, maxRetry)
}

// alertIfExhausted notifies operators once the final attempt of a retry task fails.
func (w *Worker) alertIfExhausted(ctx context.Context, task *asynq.Task, err error, retried, maxRetry int) {
	if task.Type() != TaskReceiptThumbnailRetry || errors.Is(err, asynq.SkipRetry) || retried < maxRetry {
		return
	}

	payload, perr := ParseReceiptThumbnailRetryPayload(task)
	if perr != nil {
		return
	}

	alert := email.ThumbnailRetriesExhausted{
		TenantID:   payload.TenantID,
		ReceiptID:  payload.ReceiptID,
		StorageKey: payload.StorageKey,
		Attempts:   retried + 1,
		LastError:  err.Error(),
	}
	if w.alerts == nil {
		return
	}
	if sendErr := w.alerts.SendThumbnailRetriesExhausted(ctx, alert); sendErr != nil {
		w.log.Error("failed to send thumbnail alert", "receipt_id", payload.ReceiptID, "error", sendErr)
	}
}
