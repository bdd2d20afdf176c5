// Package smtp delivers notification email over SMTP.
package smtp

import (
	"context"
	"fmt"
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	"github.com/worktrack/worktrack-api/internal/config"
)

// Mailer sends HTML mail through a configured SMTP server. It satisfies
// service.NotificationSink.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

// NewMailer creates a Mailer from SMTP configuration.
func NewMailer(cfg config.SMTPConfig, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger.With(slog.String("component", "smtp_mailer")),
	}
}

// Send delivers one HTML message. The context is checked before dialing;
// gomail itself does not take a context, so an in-flight delivery runs to
// completion once started.
func (m *Mailer) Send(ctx context.Context, recipient, subject, bodyHTML string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", bodyHTML)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", recipient, err)
	}

	m.logger.Debug("sent mail",
		slog.String("recipient", recipient),
		slog.String("subject", subject))
	return nil
}
