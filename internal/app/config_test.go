package app

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := LoadConfig()
	cfg.MailProvider = MailProviderSMTP
	cfg.SMTP.Username = "bot@example.com"
	cfg.ClassifierTimeout = 30 * time.Second
	return cfg
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}

	cfg := validConfig()
	cfg.SMTP.Username = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "SMTP_USER") {
		t.Fatalf("want SMTP_USER error, got %v", err)
	}

	cfg = validConfig()
	cfg.MailProvider = MailProviderSendGrid
	cfg.SendGrid.APIKey = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "SENDGRID_API_KEY") {
		t.Fatalf("want SENDGRID_API_KEY error, got %v", err)
	}

	cfg = validConfig()
	cfg.MailProvider = "pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unknown provider should fail")
	}
}

func TestLoadConfigReadsEnv(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "SendGrid")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CLASSIFIER_TIMEOUT_SECONDS", "12")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := LoadConfig()
	if cfg.MailProvider != MailProviderSendGrid {
		t.Fatalf("MailProvider = %q", cfg.MailProvider)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.ClassifierTimeout != 12*time.Second {
		t.Fatalf("ClassifierTimeout = %v", cfg.ClassifierTimeout)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.Prefix == "" {
		t.Fatalf("Redis = %+v", cfg.Redis)
	}
}
