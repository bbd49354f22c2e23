package mail

import (
	"fmt"

	gomail "github.com/go-mail/mail"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/config"
)

// Sender delivers outbound mail.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender delivers mail over SMTP with STARTTLS negotiation.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewSMTPSender builds a sender, or nil when no SMTP host is configured so
// callers can degrade to log-only delivery.
func NewSMTPSender(cfg config.SMTPConfig, logger *zap.Logger) *SMTPSender {
	if cfg.Host == "" {
		return nil
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Send dispatches a single HTML message.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.Debug("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
