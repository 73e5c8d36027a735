package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"property_portal_backend/internal/adapters/storage"
	"property_portal_backend/internal/email"
	"property_portal_backend/internal/events"
	"property_portal_backend/internal/media"
	"property_portal_backend/internal/scheduler"
	"property_portal_backend/platform/config"
	"property_portal_backend/platform/db"
	"property_portal_backend/platform/logger"
	"property_portal_backend/platform/metrics"
	"property_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		panic("failed to initialize storage: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	// Worker-side media wiring (no HTTP handlers required).
	mediaModule, err := media.NewModule(pool, store, cfg, eventBus, metrics.Nop{}, validator.New(), log)
	if err != nil {
		log.Error("failed to initialize media module", "error", err)
		panic("failed to initialize media module: " + err.Error())
	}

	retryClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize retry client", "error", err)
		panic("failed to initialize retry client: " + err.Error())
	}
	defer func() { _ = retryClient.Close() }()

	// A receipt gets one synchronous attempt plus MaxRetry+1 worker runs.
	maxAttempts := cfg.GetThumbnailRetryMax() + 2
	sweepInterval := getDurationEnv("THUMBNAIL_SWEEP_INTERVAL", 15*time.Minute)
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("THUMBNAIL_SWEEP_DISABLED")), "true") {
		sweep := scheduler.NewThumbnailSweep(mediaModule.Repository(), retryClient, log, sweepInterval, maxAttempts)
		go sweep.Run(ctx)
	}

	worker, err := scheduler.NewWorker(cfg, mediaModule.Service(), email.NewSender(cfg, log), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
