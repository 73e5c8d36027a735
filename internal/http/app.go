package http

import (
	"context"

	"property_portal_backend/platform/config"
	"property_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterConfig is the slice of configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs /api/health. *pgxpool.Pool satisfies it.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouteRegistrar mounts routes on the engine outside /api/v1 and outside auth.
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRoutes)
}

// App is assembled by cmd/api and handed to router.New.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health is optional; without it /api/health always answers ok.
	Health HealthChecker
	// Registry backs /metrics and the request metrics. A private registry is
	// created when nil.
	Registry     *prometheus.Registry
	PublicRoutes []RouteRegistrar
	Modules      []Module
}
