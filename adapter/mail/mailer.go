// Package mail sends outbound email over SMTP, or logs instead when no
// SMTP host is configured. Requests must never fail because mail is off.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"pressroom/domain"
)

type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// New returns an SMTP mailer, or the logging no-op when Host is empty.
func New(opts Options, log *slog.Logger) domain.Mailer {
	if opts.Host == "" {
		return &LogMailer{log: log}
	}
	return &SMTPMailer{opts: opts}
}

type SMTPMailer struct {
	opts Options
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, html string) error {
	client, err := gomail.NewClient(m.opts.Host,
		gomail.WithPort(m.opts.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.opts.Username),
		gomail.WithPassword(m.opts.Password),
	)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.opts.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, html)

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// LogMailer records what would have been sent.
type LogMailer struct {
	log *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, to, subject, html string) error {
	m.log.Info("email disabled, skipping send", "to", to, "subject", subject)
	return nil
}
