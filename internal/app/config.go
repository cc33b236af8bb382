package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desplega-ai/mood/internal/data/db"
	"github.com/desplega-ai/mood/internal/modules/moodcheck"
	"github.com/desplega-ai/mood/internal/observability"
	"github.com/desplega-ai/mood/internal/platform/envutil"
	"github.com/desplega-ai/mood/internal/platform/imap"
	"github.com/desplega-ai/mood/internal/platform/openai"
	"github.com/desplega-ai/mood/internal/platform/redislock"
	"github.com/desplega-ai/mood/internal/platform/sendgrid"
	"github.com/desplega-ai/mood/internal/platform/smtp"
)

const (
	MailProviderSMTP     = "smtp"
	MailProviderSendGrid = "sendgrid"
)

type Config struct {
	LogMode     string
	Port        string
	CronSecret  string
	CORSOrigins []string

	MailProvider      string
	ClassifierTimeout time.Duration
	QuotesEnabled     bool

	DB        db.Config
	IMAP      imap.Config
	SMTP      smtp.Config
	SendGrid  sendgrid.Config
	OpenAI    openai.Config
	Redis     redislock.Config
	MoodCheck moodcheck.Config
	Otel      observability.OtelConfig
}

func LoadConfig() Config {
	return Config{
		LogMode:     envutil.String("LOG_MODE", "development"),
		Port:        envutil.String("PORT", "8080"),
		CronSecret:  envutil.String("CRON_SECRET", ""),
		CORSOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),

		MailProvider:      strings.ToLower(envutil.String("MAIL_PROVIDER", MailProviderSMTP)),
		ClassifierTimeout: envutil.Seconds("CLASSIFIER_TIMEOUT_SECONDS", 30*time.Second),
		QuotesEnabled:     envutil.Bool("PROMPT_QUOTES_ENABLED", true),

		DB:       db.ConfigFromEnv(),
		IMAP:     imap.ConfigFromEnv(),
		SMTP:     smtp.ConfigFromEnv(),
		SendGrid: sendgrid.ConfigFromEnv(),
		OpenAI:   openai.ConfigFromEnv(),
		Redis: redislock.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Prefix:   envutil.String("REDIS_LOCK_PREFIX", "moodcheck:lock:"),
		},
		MoodCheck: moodcheck.ConfigFromEnv(),
		Otel: observability.OtelConfig{
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "moodcheck"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
		},
	}
}

// Validate checks what every entry point needs. Mailbox and LLM settings are
// checked when their clients are built.
func (c Config) Validate() error {
	var errs []error
	switch c.MailProvider {
	case MailProviderSMTP:
		if strings.TrimSpace(c.SMTP.Username) == "" {
			errs = append(errs, errors.New("SMTP_USER is required when MAIL_PROVIDER=smtp"))
		}
	case MailProviderSendGrid:
		if strings.TrimSpace(c.SendGrid.APIKey) == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY is required when MAIL_PROVIDER=sendgrid"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider))
	}
	if c.ClassifierTimeout <= 0 {
		errs = append(errs, errors.New("CLASSIFIER_TIMEOUT_SECONDS must be positive"))
	}
	return errors.Join(errs...)
}
