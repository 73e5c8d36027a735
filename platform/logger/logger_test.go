package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}, &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestWithContextAddsKnownKeys(t *testing.T) {
	log, buf := capture()
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, TenantIDKey, "tenant-1")

	log.WithContext(ctx).Info("hello")

	line := decode(t, buf)
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "tenant-1", line["tenant_id"])
	assert.NotContains(t, line, "user_id")
}

func TestWithContextWithoutValuesReturnsSameLogger(t *testing.T) {
	log, _ := capture()
	assert.Same(t, log, log.WithContext(context.Background()))
}

func TestPipelineStageFailed(t *testing.T) {
	log, buf := capture()

	log.PipelineStageFailed("receipt", "transcode", "t/receipts/2026/a.png", errors.New("decode"))

	line := decode(t, buf)
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "media_pipeline_stage_failed", line["msg"])
	assert.Equal(t, "transcode", line["stage"])
	assert.Equal(t, "decode", line["error"])
}

func TestNewHonoursLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	log := New("production")

	assert.False(t, log.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, log.Enabled(context.Background(), slog.LevelError))
}
