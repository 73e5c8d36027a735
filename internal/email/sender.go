// Package email delivers operational alerts by SMTP.
package email

import (
	"context"

	"property_portal_backend/platform/config"
	"property_portal_backend/platform/logger"
)

// Sender delivers operator alerts.
type Sender interface {
	SendThumbnailRetriesExhausted(ctx context.Context, alert ThumbnailRetriesExhausted) error
}

// ThumbnailRetriesExhausted describes a receipt whose thumbnail could not be
// generated after every retry.
type ThumbnailRetriesExhausted struct {
	TenantID   string
	ReceiptID  string
	StorageKey string
	Attempts   int
	LastError  string
}

// LogSender records alerts in the log when SMTP is not configured.
type LogSender struct {
	log *logger.Logger
}

func (s LogSender) SendThumbnailRetriesExhausted(ctx context.Context, alert ThumbnailRetriesExhausted) error {
	s.log.WithContext(ctx).Error("receipt thumbnail retries exhausted",
		"tenant_id", alert.TenantID,
		"receipt_id", alert.ReceiptID,
		"storage_key", alert.StorageKey,
		"attempts", alert.Attempts,
		"error", alert.LastError,
	)
	return nil
}

// NewSender returns an SMTP sender when alert email is configured, otherwise a
// LogSender.
func NewSender(cfg config.AlertConfig, log *logger.Logger) Sender {
	if !cfg.IsAlertEmailEnabled() {
		return LogSender{log: log}
	}
	return NewSMTPSender(
		cfg.GetAlertSMTPHost(),
		cfg.GetAlertSMTPPort(),
		cfg.GetAlertSMTPUsername(),
		cfg.GetAlertSMTPPassword(),
		cfg.GetAlertEmailFrom(),
		cfg.GetAlertEmailTo(),
	)
}
