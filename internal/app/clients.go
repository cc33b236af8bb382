package app

import (
	"fmt"
	"strings"

	"github.com/desplega-ai/mood/internal/modules/moodcheck"
	"github.com/desplega-ai/mood/internal/platform/imap"
	"github.com/desplega-ai/mood/internal/platform/logger"
	"github.com/desplega-ai/mood/internal/platform/openai"
	"github.com/desplega-ai/mood/internal/platform/redislock"
	"github.com/desplega-ai/mood/internal/platform/sendgrid"
	"github.com/desplega-ai/mood/internal/platform/smtp"
	"github.com/desplega-ai/mood/internal/services"
)

type Clients struct {
	Mailbox    *imap.Client
	Mailer     services.Mailer
	Classifier openai.Client
	Quotes     openai.Client
	Lock       moodcheck.PollLock

	redis *redislock.Locker
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	mailer, err := wireMailer(log, cfg)
	if err != nil {
		return Clients{}, err
	}

	var classifier, quotes openai.Client
	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		log.Warn("OPENAI_API_KEY not set; replies will score as neutral and prompts carry no quote")
	} else {
		// The classifier never retries; a failed call degrades to the default score.
		clsCfg := cfg.OpenAI
		clsCfg.MaxRetries = 0
		clsCfg.Timeout = cfg.ClassifierTimeout
		classifier, err = openai.New(log, clsCfg)
		if err != nil {
			return Clients{}, fmt.Errorf("init classifier client: %w", err)
		}
		if cfg.QuotesEnabled {
			quotes, err = openai.New(log, cfg.OpenAI)
			if err != nil {
				return Clients{}, fmt.Errorf("init quote client: %w", err)
			}
		}
	}

	out := Clients{
		Mailbox:    imap.New(log, cfg.IMAP),
		Mailer:     mailer,
		Classifier: classifier,
		Quotes:     quotes,
		Lock:       moodcheck.NewLocalLock(),
	}
	if cfg.Redis.Addr != "" {
		locker, err := redislock.New(log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis lock: %w", err)
		}
		out.redis = locker
		out.Lock = locker
	}
	return out, nil
}

func wireMailer(log *logger.Logger, cfg Config) (services.Mailer, error) {
	switch cfg.MailProvider {
	case MailProviderSendGrid:
		c, err := sendgrid.New(log, cfg.SendGrid)
		if err != nil {
			return nil, fmt.Errorf("init sendgrid client: %w", err)
		}
		return services.NewSendGridMailer(log, c, cfg.SendGrid.DefaultFromEmail, cfg.SendGrid.DefaultFromName), nil
	default:
		c, err := smtp.New(log, cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("init smtp client: %w", err)
		}
		return services.NewSMTPMailer(log, c), nil
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
}
