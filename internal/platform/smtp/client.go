package smtp

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/desplega-ai/mood/internal/platform/envutil"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

// Client sends plain-text mail over an authenticated SMTP submission port.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
	// ImplicitTLS dials TLS directly (port 465) instead of STARTTLS.
	ImplicitTLS bool
}

func ConfigFromEnv() Config {
	port := envutil.Int("SMTP_PORT", 587)
	user := envutil.String("SMTP_USER", "")
	return Config{
		Host:        envutil.String("SMTP_HOST", "smtp.gmail.com"),
		Port:        port,
		Username:    user,
		Password:    envutil.String("SMTP_PASSWORD", ""),
		FromEmail:   envutil.String("SMTP_FROM_EMAIL", user),
		FromName:    envutil.String("SMTP_FROM_NAME", "Mood Tracker"),
		Timeout:     envutil.Seconds("SMTP_TIMEOUT_SECONDS", 30*time.Second),
		ImplicitTLS: envutil.Bool("SMTP_IMPLICIT_TLS", port == 465),
	}
}

type Message struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
}

type client struct {
	log  *logger.Logger
	cfg  Config
	opts []gomail.Option
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("missing SMTP_HOST")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("missing SMTP_FROM_EMAIL")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(cfg.Timeout),
	}
	if cfg.ImplicitTLS {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	return &client{
		log:  log.With("client", "SMTPClient"),
		cfg:  cfg,
		opts: opts,
	}, nil
}

func (c *client) buildMessage(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.FromFormat(c.cfg.FromName, c.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("smtp: from: %w", err)
	}
	if err := m.To(strings.TrimSpace(msg.To)); err != nil {
		return nil, fmt.Errorf("smtp: to: %w", err)
	}
	if rt := strings.TrimSpace(msg.ReplyTo); rt != "" {
		if err := m.ReplyTo(rt); err != nil {
			return nil, fmt.Errorf("smtp: reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	return m, nil
}

func (c *client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("smtp: recipient required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return fmt.Errorf("smtp: subject required")
	}
	m, err := c.buildMessage(msg)
	if err != nil {
		return err
	}

	sc, err := gomail.NewClient(c.cfg.Host, c.opts...)
	if err != nil {
		return fmt.Errorf("smtp: client: %w", err)
	}
	start := time.Now()
	if err := sc.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp: send: %w", err)
	}
	c.log.Debug("SMTP message sent", "host", c.cfg.Host, "duration", time.Since(start).String())
	return nil
}
