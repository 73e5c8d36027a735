package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"property_portal_backend/internal/adapters/storage"
	"property_portal_backend/internal/events"
	apphttp "property_portal_backend/internal/http"
	"property_portal_backend/internal/http/router"
	"property_portal_backend/internal/media"
	"property_portal_backend/internal/scheduler"
	"property_portal_backend/migrations"
	"property_portal_backend/platform/config"
	"property_portal_backend/platform/db"
	"property_portal_backend/platform/logger"
	"property_portal_backend/platform/metrics"
	"property_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "storageDriver", cfg.GetStorageDriver())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Object store, selected once by STORAGE_DRIVER
	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		panic("failed to initialize storage: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure storage ready", 5, 2*time.Second, func() error {
		return store.EnsureReady(ctx)
	}); err != nil {
		log.Error("failed to prepare storage", "error", err, "driver", store.Driver())
		panic("failed to prepare storage: " + err.Error())
	}
	log.Info("storage initialized", "driver", store.Driver(), "bucket", cfg.GetMediaBucket())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.MustNewPipelineMetrics(registry)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	mediaModule, err := media.NewModule(pool, store, cfg, eventBus, pipelineMetrics, val, log)
	if err != nil {
		log.Error("failed to initialize media module", "error", err)
		panic("failed to initialize media module: " + err.Error())
	}
	mediaModule.RegisterHandlers(eventBus)

	retryClient, closeRetries := initRetryScheduler(cfg, log)
	if closeRetries != nil {
		defer closeRetries()
		mediaModule.SetRetryScheduler(retryClient)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	var publicRoutes []apphttp.RouteRegistrar
	if local, ok := store.(*storage.LocalStore); ok {
		publicRoutes = append(publicRoutes, storage.NewLocalHandler(local))
	}

	app := &apphttp.App{
		Config:       cfg,
		Logger:       log,
		Health:       pool,
		Registry:     registry,
		PublicRoutes: publicRoutes,
		Modules: []apphttp.Module{
			mediaModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRetryScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; receipt thumbnail retries disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize retry scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
