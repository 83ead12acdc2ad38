// Package notify emails reporters when their item is marked found.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/config"
)

// FoundSubject is the subject line of every found-item email.
const FoundSubject = "Your Lost Item Has Been Found"

// FoundBody returns the plain text body for an item named name.
func FoundBody(name string) string {
	return fmt.Sprintf("Good news! Your lost item \"%s\" has been found. Please contact the lost and found office to retrieve it.", name)
}

// Notifier tells a reporter that their item was found.
type Notifier interface {
	NotifyFound(ctx context.Context, name, email string) error
}

// SMTPNotifier sends notifications through an SMTP relay.
type SMTPNotifier struct {
	cfg config.SMTPConfig
}

// NewSMTPNotifier creates an SMTP notifier.
func NewSMTPNotifier(cfg config.SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &SMTPNotifier{cfg: cfg}, nil
}

func (n *SMTPNotifier) NotifyFound(ctx context.Context, name, email string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}
	msg.Subject(FoundSubject)
	msg.SetBodyString(mail.TypeTextPlain, FoundBody(name))

	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
	}
	// Implicit TLS for 465, STARTTLS otherwise.
	if n.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}

	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

// LogNotifier only logs the email it would have sent. It is used when no
// SMTP credentials are configured.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) NotifyFound(ctx context.Context, name, email string) error {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "found notification (mail disabled)",
		"to", email,
		"subject", FoundSubject,
		"body", FoundBody(name),
	)
	return nil
}

// New returns an SMTPNotifier when credentials are configured and a
// LogNotifier otherwise.
func New(cfg config.SMTPConfig, log *slog.Logger) (Notifier, error) {
	if !cfg.Enabled() {
		return LogNotifier{Log: log}, nil
	}
	return NewSMTPNotifier(cfg)
}
