// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageDriverMinIO = "minio"
	StorageDriverS3    = "s3"
	StorageDriverLocal = "local"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDatabaseMaxConns() int32
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
	IsMetricsEnabled() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
}

// S3Config provides settings for AWS S3 (or any S3 API endpoint).
type S3Config interface {
	GetS3Region() string
	GetS3Endpoint() string
	GetS3AccessKey() string
	GetS3SecretKey() string
	GetS3UsePathStyle() bool
}

// LocalStorageConfig provides settings for the filesystem-backed store.
type LocalStorageConfig interface {
	GetLocalStorageDir() string
	GetLocalStoragePublicURL() string
	GetLocalStorageSecret() string
}

// StorageConfig selects and configures the object store.
type StorageConfig interface {
	MinIOConfig
	S3Config
	LocalStorageConfig
	GetStorageDriver() string
	GetStoragePresignTTL() time.Duration
	GetMediaBucket() string
}

// MediaConfig provides media pipeline limits.
type MediaConfig interface {
	GetMediaMaxUploadBytes() int64
	GetMediaTransferTimeout() time.Duration
}

// SchedulerConfig provides settings for the asynq retry queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetThumbnailRetryMax() int
}

// AlertConfig provides SMTP settings for operational alerts.
type AlertConfig interface {
	GetAlertSMTPHost() string
	GetAlertSMTPPort() int
	GetAlertSMTPUsername() string
	GetAlertSMTPPassword() string
	GetAlertEmailFrom() string
	GetAlertEmailTo() []string
	IsAlertEmailEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	DatabaseMaxConns      int32
	JWTAccessSecret       string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	RateLimitRPS          float64
	RateLimitBurst        int
	MetricsEnabled        bool
	StorageDriver         string
	StoragePresignTTL     time.Duration
	MediaBucket           string
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	S3Region              string
	S3Endpoint            string
	S3AccessKey           string
	S3SecretKey           string
	S3UsePathStyle        bool
	LocalStorageDir       string
	LocalStoragePublicURL string
	LocalStorageSecret    string
	MediaMaxUploadBytes   int64
	MediaTransferTimeout  time.Duration
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	ThumbnailRetryMax     int
	AlertSMTPHost         string
	AlertSMTPPort         int
	AlertSMTPUsername     string
	AlertSMTPPassword     string
	AlertEmailFrom        string
	AlertEmailTo          []string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetDatabaseMaxConns() int32 { return c.DatabaseMaxConns }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }
func (c *Config) IsMetricsEnabled() bool   { return c.MetricsEnabled }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }

// S3Config implementation
func (c *Config) GetS3Region() string     { return c.S3Region }
func (c *Config) GetS3Endpoint() string   { return c.S3Endpoint }
func (c *Config) GetS3AccessKey() string  { return c.S3AccessKey }
func (c *Config) GetS3SecretKey() string  { return c.S3SecretKey }
func (c *Config) GetS3UsePathStyle() bool { return c.S3UsePathStyle }

// LocalStorageConfig implementation
func (c *Config) GetLocalStorageDir() string       { return c.LocalStorageDir }
func (c *Config) GetLocalStoragePublicURL() string { return c.LocalStoragePublicURL }
func (c *Config) GetLocalStorageSecret() string    { return c.LocalStorageSecret }

// StorageConfig implementation
func (c *Config) GetStorageDriver() string            { return c.StorageDriver }
func (c *Config) GetStoragePresignTTL() time.Duration { return c.StoragePresignTTL }
func (c *Config) GetMediaBucket() string              { return c.MediaBucket }

// MediaConfig implementation
func (c *Config) GetMediaMaxUploadBytes() int64          { return c.MediaMaxUploadBytes }
func (c *Config) GetMediaTransferTimeout() time.Duration { return c.MediaTransferTimeout }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetThumbnailRetryMax() int { return c.ThumbnailRetryMax }

// AlertConfig implementation
func (c *Config) GetAlertSMTPHost() string     { return c.AlertSMTPHost }
func (c *Config) GetAlertSMTPPort() int        { return c.AlertSMTPPort }
func (c *Config) GetAlertSMTPUsername() string { return c.AlertSMTPUsername }
func (c *Config) GetAlertSMTPPassword() string { return c.AlertSMTPPassword }
func (c *Config) GetAlertEmailFrom() string    { return c.AlertEmailFrom }
func (c *Config) GetAlertEmailTo() []string    { return c.AlertEmailTo }
func (c *Config) IsAlertEmailEnabled() bool {
	return c.AlertSMTPHost != "" && c.AlertEmailFrom != "" && len(c.AlertEmailTo) > 0
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	httpAddr := getEnv("HTTP_ADDR", ":8080")

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              httpAddr,
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:      int32(mustInt(getEnv("DB_MAX_CONNS", "10"))),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RateLimitRPS:          mustFloat64(getEnv("RATE_LIMIT_RPS", "10")),
		RateLimitBurst:        mustInt(getEnv("RATE_LIMIT_BURST", "20")),
		MetricsEnabled:        strings.EqualFold(getEnv("METRICS_ENABLED", "true"), "true"),
		StorageDriver:         strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", StorageDriverMinIO))),
		StoragePresignTTL:     mustDuration(getEnv("STORAGE_PRESIGN_TTL", "15m")),
		MediaBucket:           getEnv("MEDIA_BUCKET", "property-media"),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		S3Region:              getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:            getEnv("S3_ENDPOINT", ""),
		S3AccessKey:           getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:           getEnv("S3_SECRET_KEY", ""),
		S3UsePathStyle:        strings.EqualFold(getEnv("S3_USE_PATH_STYLE", "false"), "true"),
		LocalStorageDir:       getEnv("LOCAL_STORAGE_DIR", "./data/objects"),
		LocalStoragePublicURL: getEnv("LOCAL_STORAGE_PUBLIC_URL", "http://localhost"+portSuffix(httpAddr)),
		LocalStorageSecret:    getEnv("LOCAL_STORAGE_SECRET", ""),
		MediaMaxUploadBytes:   mustInt64(getEnv("MEDIA_MAX_UPLOAD_BYTES", "10485760")),
		MediaTransferTimeout:  mustDuration(getEnv("MEDIA_TRANSFER_TIMEOUT", "30s")),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "media"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "4")),
		ThumbnailRetryMax:     mustInt(getEnv("THUMBNAIL_RETRY_MAX", "5")),
		AlertSMTPHost:         getEnv("ALERT_SMTP_HOST", ""),
		AlertSMTPPort:         mustInt(getEnv("ALERT_SMTP_PORT", "587")),
		AlertSMTPUsername:     getEnv("ALERT_SMTP_USERNAME", ""),
		AlertSMTPPassword:     getEnv("ALERT_SMTP_PASSWORD", ""),
		AlertEmailFrom:        getEnv("ALERT_EMAIL_FROM", ""),
		AlertEmailTo:          splitCSV(getEnv("ALERT_EMAIL_TO", "")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if c.StoragePresignTTL <= 0 {
		return fmt.Errorf("STORAGE_PRESIGN_TTL must be a positive duration")
	}
	if c.MediaMaxUploadBytes <= 0 {
		return fmt.Errorf("MEDIA_MAX_UPLOAD_BYTES must be greater than 0")
	}

	switch c.StorageDriver {
	case StorageDriverMinIO:
		if c.MinIOEndpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_DRIVER is minio")
		}
	case StorageDriverS3:
		if c.MediaBucket == "" {
			return fmt.Errorf("MEDIA_BUCKET is required when STORAGE_DRIVER is s3")
		}
	case StorageDriverLocal:
		if c.LocalStorageSecret == "" {
			return fmt.Errorf("LOCAL_STORAGE_SECRET is required when STORAGE_DRIVER is local")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat64(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}

// portSuffix turns ":8080" or "0.0.0.0:8080" into ":8080".
func portSuffix(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ""
}
