package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const alertFromName = "Media pipeline"

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	to        []string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail string, to []string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
		to:        to,
	}
}

func (s *SMTPSender) SendThumbnailRetriesExhausted(ctx context.Context, alert ThumbnailRetriesExhausted) error {
	html, text, err := renderThumbnailAlert(alert)
	if err != nil {
		return err
	}
	return s.send(ctx, fmt.Sprintf(subjectThumbnailRetriesExhaustedFmt, alert.ReceiptID), html, text)
}

func (s *SMTPSender) newMsg(subject, htmlContent, textContent string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(alertFromName, s.fromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(s.to...); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, textContent)
	msg.AddAlternativeString(gomail.TypeTextHTML, htmlContent)
	return msg, nil
}

func (s *SMTPSender) send(ctx context.Context, subject, htmlContent, textContent string) error {
	msg, err := s.newMsg(subject, htmlContent, textContent)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
