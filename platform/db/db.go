// Package db opens the Postgres pool and applies the embedded migrations.
package db

import (
	"context"
	"fmt"
	"time"

	"property_portal_backend/platform/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultMaxConns = 10

// NewPool opens a pool sized by DB_MAX_CONNS and pings it once.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	applyPoolLimits(poolConfig, cfg.GetDatabaseMaxConns())

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func applyPoolLimits(pc *pgxpool.Config, maxConns int32) {
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	pc.MaxConns = maxConns
	pc.MinConns = min(2, maxConns)
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute
}
