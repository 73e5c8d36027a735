package email

import (
	"context"
	"testing"

	"property_portal_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

type alertConfig struct {
	host string
}

func (c alertConfig) GetAlertSMTPHost() string     { return c.host }
func (c alertConfig) GetAlertSMTPPort() int        { return 587 }
func (c alertConfig) GetAlertSMTPUsername() string { return "" }
func (c alertConfig) GetAlertSMTPPassword() string { return "" }
func (c alertConfig) GetAlertEmailFrom() string    { return "ops@example.com" }
func (c alertConfig) GetAlertEmailTo() []string    { return []string{"oncall@example.com"} }
func (c alertConfig) IsAlertEmailEnabled() bool    { return c.host != "" }

var sampleAlert = ThumbnailRetriesExhausted{
	TenantID:   "t1",
	ReceiptID:  "r1",
	StorageKey: "t1/receipts/2026/<r1>.pdf",
	Attempts:   6,
	LastError:  "download: status 404",
}

func TestNewSenderSelectsImplementation(t *testing.T) {
	assert.IsType(t, LogSender{}, NewSender(alertConfig{}, logger.Discard()))
	assert.IsType(t, &SMTPSender{}, NewSender(alertConfig{host: "smtp.example.com"}, logger.Discard()))
}

func TestLogSenderNeverFails(t *testing.T) {
	s := LogSender{log: logger.Discard()}
	assert.NoError(t, s.SendThumbnailRetriesExhausted(context.Background(), sampleAlert))
}

func TestRenderThumbnailAlert(t *testing.T) {
	html, text, err := renderThumbnailAlert(sampleAlert)
	require.NoError(t, err)

	assert.Contains(t, html, "&lt;r1&gt;", "html body escapes values")
	assert.Contains(t, text, "t1/receipts/2026/<r1>.pdf")
	assert.Contains(t, text, "Attempts:    6")
}

func TestSMTPMessageHeaders(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "", "", "ops@example.com", []string{"a@example.com", "b@example.com"})

	msg, err := s.newMsg("subject", "<p>x</p>", "x")
	require.NoError(t, err)

	to := msg.GetToString()
	assert.Len(t, to, 2)
	assert.Equal(t, []string{"subject"}, msg.GetGenHeader(gomail.HeaderSubject))
}
