package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "property_portal_backend/internal/http"
	"property_portal_backend/platform/httpkit"
	"property_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct{}

func (testConfig) GetHTTPAddr() string        { return ":0" }
func (testConfig) GetCORSAllowAll() bool      { return false }
func (testConfig) GetCORSOrigins() []string   { return []string{"http://localhost:4200"} }
func (testConfig) GetCORSAllowCreds() bool    { return true }
func (testConfig) GetRateLimitRPS() float64   { return 1000 }
func (testConfig) GetRateLimitBurst() int     { return 1000 }
func (testConfig) IsMetricsEnabled() bool     { return true }
func (testConfig) GetJWTAccessSecret() string { return "secret" }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/echo", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
}

func newEngine(t *testing.T, health apphttp.HealthChecker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config:   testConfig{},
		Logger:   logger.Discard(),
		Health:   health,
		Registry: prometheus.NewRegistry(),
		Modules:  []apphttp.Module{echoModule{}},
	})
}

func serve(e *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	ok := newEngine(t, pingFunc(func(context.Context) error { return nil }))
	w := serve(ok, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(httpkit.HeaderRequestID))

	down := newEngine(t, pingFunc(func(context.Context) error { return errors.New("db down") }))
	assert.Equal(t, http.StatusServiceUnavailable, serve(down, http.MethodGet, "/api/health").Code)
}

func TestModuleRoutesRequireAuth(t *testing.T) {
	e := newEngine(t, nil)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/api/v1/echo").Code)
}

func TestMetricsEndpointExposesHTTPHistogram(t *testing.T) {
	e := newEngine(t, nil)
	serve(e, http.MethodGet, "/api/health")

	w := serve(e, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_request_duration_seconds_count{method="GET",route="/api/health",status="200"}`)
}
