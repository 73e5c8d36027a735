// Package router assembles the gin engine from the App's modules.
package router

import (
	"net/http"
	"time"

	apphttp "property_portal_backend/internal/http"
	"property_portal_backend/internal/http/middleware"
	"property_portal_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// New builds the engine: shared middleware, health and metrics endpoints,
// public routes and every module under /api/v1.
func New(app *apphttp.App) *gin.Engine {
	cfg := app.Config
	log := app.Logger

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(log))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(cfg)))

	registry := app.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if reqMetrics, err := middleware.NewRequestMetrics(registry); err != nil {
		log.Error("failed to register http metrics", "error", err)
	} else {
		engine.Use(reqMetrics.RequestTimer())
	}

	limiter := httpkit.NewIPRateLimiter(rate.Limit(cfg.GetRateLimitRPS()), cfg.GetRateLimitBurst(), log)
	engine.Use(limiter.RateLimit())

	engine.GET("/api/health", func(c *gin.Context) {
		if app.Health != nil {
			if err := app.Health.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.IsMetricsEnabled() {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	}

	for _, r := range app.PublicRoutes {
		r.RegisterRoutes(engine)
	}

	v1 := engine.Group("/api/v1")
	auth := httpkit.AuthRequired(cfg)
	protected := v1.Group("", auth)

	rc := &apphttp.RouterContext{
		Engine:    engine,
		V1:        v1,
		Protected: protected,
	}
	for _, m := range app.Modules {
		m.RegisterRoutes(rc)
		log.Info("module registered", "module", m.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", httpkit.HeaderRequestID},
		ExposeHeaders:    []string{httpkit.HeaderRequestID},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.GetCORSOrigins()
	}
	return c
}
