package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desplega-ai/mood/internal/platform/logger"
	"github.com/desplega-ai/mood/internal/platform/sendgrid"
	"github.com/desplega-ai/mood/internal/platform/smtp"
)

// Email is a plain-text outbound message. The sender identity comes from
// the provider configuration.
type Email struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	Text    string
}

// Mailer delivers outbound prompt and welcome emails.
type Mailer interface {
	Send(ctx context.Context, e Email) error
	Provider() string
}

type smtpMailer struct {
	log    *logger.Logger
	client smtp.Client
}

func NewSMTPMailer(log *logger.Logger, client smtp.Client) Mailer {
	return &smtpMailer{log: log.With("service", "SMTPMailer"), client: client}
}

func (m *smtpMailer) Provider() string { return "smtp" }

func (m *smtpMailer) Send(ctx context.Context, e Email) error {
	if strings.TrimSpace(e.To) == "" {
		return fmt.Errorf("recipient required")
	}
	return m.client.Send(ctx, smtp.Message{
		To:      e.To,
		ReplyTo: e.ReplyTo,
		Subject: e.Subject,
		Text:    e.Text,
	})
}

type sendgridMailer struct {
	log    *logger.Logger
	client sendgrid.Client
	from   sendgrid.Address
}

func NewSendGridMailer(log *logger.Logger, client sendgrid.Client, fromEmail, fromName string) Mailer {
	return &sendgridMailer{
		log:    log.With("service", "SendGridMailer"),
		client: client,
		from:   sendgrid.Address{Email: fromEmail, Name: fromName},
	}
}

func (m *sendgridMailer) Provider() string { return "sendgrid" }

func (m *sendgridMailer) Send(ctx context.Context, e Email) error {
	if strings.TrimSpace(e.To) == "" {
		return fmt.Errorf("recipient required")
	}
	res, err := m.client.Send(ctx, sendgrid.Message{
		From:    m.from,
		To:      sendgrid.Address{Email: e.To, Name: e.ToName},
		ReplyTo: e.ReplyTo,
		Subject: e.Subject,
		Text:    e.Text,
	})
	if err != nil {
		return err
	}
	m.log.Debug("SendGrid accepted email", "status", res.StatusCode, "message_id", res.MessageID)
	return nil
}
