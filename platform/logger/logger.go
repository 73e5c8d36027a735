// Package logger wraps slog with the context fields and event helpers the
// API, the queue worker and the backfill tool share.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

// Context keys read by WithContext.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TenantIDKey  contextKey = "tenant_id"
)

// Logger wraps slog.Logger.
type Logger struct {
	*slog.Logger
}

// New builds a text logger at debug level for development and a JSON logger
// at info level otherwise. LOG_LEVEL overrides the level.
func New(env string) *Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	dev := strings.EqualFold(env, "development")
	if dev {
		opts.Level = slog.LevelDebug
	}
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(raw)); err == nil {
			opts.Level = lvl
		}
	}

	var handler slog.Handler
	if dev {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithContext adds request_id, user_id and tenant_id when ctx carries them.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	var attrs []any
	for _, key := range []contextKey{RequestIDKey, UserIDKey, TenantIDKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{Logger: l.With(attrs...)}
}

func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

// PipelineStageFailed is a warning: thumbnail stages never fail the request.
func (l *Logger) PipelineStageFailed(pipeline, stage, storageKey string, err error) {
	l.Warn("media_pipeline_stage_failed",
		slog.String("pipeline", pipeline),
		slog.String("stage", stage),
		slog.String("storage_key", storageKey),
		slog.String("error", err.Error()),
	)
}

// TaskFailed logs a failed queue task run. retried counts earlier failures.
func (l *Logger) TaskFailed(taskType string, retried, maxRetry int, err error) {
	l.Warn("task_failed",
		slog.String("task_type", taskType),
		slog.Int("retried", retried),
		slog.Int("max_retry", maxRetry),
		slog.String("error", err.Error()),
	)
}
