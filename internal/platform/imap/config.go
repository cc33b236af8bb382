package imap

import (
	"time"

	"github.com/desplega-ai/mood/internal/platform/envutil"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Folder   string
	// TLS dials implicit TLS (993). Disabled only for local test servers.
	TLS      bool
	Timeout  time.Duration
	Lookback time.Duration
	MarkSeen bool
	// FetchBatch bounds how many bodies are held in memory at once.
	FetchBatch int
}

func ConfigFromEnv() Config {
	user := envutil.String("IMAP_USER", envutil.String("SMTP_USER", ""))
	return Config{
		Host:       envutil.String("IMAP_HOST", "imap.gmail.com"),
		Port:       envutil.Int("IMAP_PORT", 993),
		Username:   user,
		Password:   envutil.String("IMAP_PASSWORD", envutil.String("SMTP_PASSWORD", "")),
		Folder:     envutil.String("IMAP_FOLDER", "INBOX"),
		TLS:        envutil.Bool("IMAP_TLS", true),
		Timeout:    envutil.Seconds("IMAP_TIMEOUT_SECONDS", 30*time.Second),
		Lookback:   time.Duration(envutil.Int("IMAP_LOOKBACK_HOURS", 24)) * time.Hour,
		MarkSeen:   envutil.Bool("IMAP_MARK_SEEN", false),
		FetchBatch: envutil.Int("IMAP_FETCH_BATCH", 20),
	}
}

func (c Config) withDefaults() Config {
	if c.Port <= 0 {
		c.Port = 993
	}
	if c.Folder == "" {
		c.Folder = "INBOX"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Lookback <= 0 {
		c.Lookback = 24 * time.Hour
	}
	if c.FetchBatch <= 0 {
		c.FetchBatch = 20
	}
	return c
}
