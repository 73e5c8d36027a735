package main

import (
	"context"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"property_portal_backend/internal/adapters/storage"
	"property_portal_backend/internal/events"
	"property_portal_backend/internal/media"
	"property_portal_backend/internal/media/repository"
	"property_portal_backend/internal/media/service"
	"property_portal_backend/platform/config"
	"property_portal_backend/platform/db"
	"property_portal_backend/platform/logger"
	"property_portal_backend/platform/validator"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type counters struct {
	processed atomic.Int64
	generated atomic.Int64
	failed    atomic.Int64
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	concurrency := getPositiveIntEnv("BACKFILL_CONCURRENCY", 4)
	rps := getPositiveFloatEnv("BACKFILL_RPS", 5)
	batchSize := getPositiveIntEnv("BACKFILL_BATCH_SIZE", 100)
	dryRun := strings.EqualFold(strings.TrimSpace(os.Getenv("BACKFILL_DRY_RUN")), "true")
	log.Info("starting receipt thumbnail backfill", "concurrency", concurrency, "rps", rps, "dryRun", dryRun)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
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

	mediaModule, err := media.NewModule(pool, store, cfg, eventBus, nil, validator.New(), log)
	if err != nil {
		log.Error("failed to initialize media module", "error", err)
		panic("failed to initialize media module: " + err.Error())
	}

	repo := mediaModule.Repository()
	svc := mediaModule.Service()
	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	var c counters

	cursor := uuid.Nil
	for ctx.Err() == nil {
		// Attempts are ignored here; the backfill is the manual path after retries ran out.
		receipts, err := repo.ListReceiptsMissingThumbnail(ctx, cursor, math.MaxInt32, batchSize)
		if err != nil {
			log.Error("failed to list receipts", "error", err)
			break
		}
		if len(receipts) == 0 {
			break
		}
		cursor = receipts[len(receipts)-1].ID

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, rc := range receipts {
			g.Go(func() error {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				backfillReceipt(gctx, svc, rc, dryRun, &c, log)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			log.Warn("backfill batch interrupted", "error", err)
			break
		}

		if len(receipts) < batchSize {
			break
		}
	}

	log.Info("receipt thumbnail backfill completed",
		"processed", c.processed.Load(),
		"generated", c.generated.Load(),
		"failed", c.failed.Load(),
	)
}

func backfillReceipt(ctx context.Context, svc *service.Service, rc repository.Receipt, dryRun bool, c *counters, log *logger.Logger) {
	c.processed.Add(1)
	if dryRun {
		log.Info("would regenerate thumbnail", "receiptId", rc.ID, "tenantId", rc.TenantID, "storageKey", rc.StorageKey, "attempts", rc.ThumbnailAttempts)
		return
	}

	result, err := svc.RegenerateReceiptThumbnail(ctx, rc.TenantID, rc.ID)
	if err != nil {
		c.failed.Add(1)
		log.Error("failed to regenerate thumbnail", "receiptId", rc.ID, "tenantId", rc.TenantID, "error", err)
		return
	}
	if !result.OK() {
		c.failed.Add(1)
		return
	}
	c.generated.Add(1)
}

func getPositiveIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func getPositiveFloatEnv(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
