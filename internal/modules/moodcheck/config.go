package moodcheck

import (
	"strings"
	"time"

	"github.com/desplega-ai/mood/internal/domain/mood"
	"github.com/desplega-ai/mood/internal/platform/envutil"
)

const DefaultMarker = "MoodCheck"

type Config struct {
	// Marker is the literal inside "[<Marker>-<id>]" subject tokens.
	Marker          string
	Variant         mood.Variant
	SubjectText     string
	AddressFallback bool
	Lookback        time.Duration
	LockTTL         time.Duration
	Concurrency     int
	DashboardURL    string
	QuoteTimeout    time.Duration
}

func ConfigFromEnv() Config {
	variant, ok := mood.ParseVariant(strings.ToLower(envutil.String("PROMPT_VARIANT", string(mood.VariantDual))))
	if !ok {
		variant = mood.VariantDual
	}
	return Config{
		Marker:          envutil.String("MOODCHECK_MARKER", DefaultMarker),
		Variant:         variant,
		SubjectText:     envutil.String("MOODCHECK_SUBJECT_TEXT", "How are you doing?"),
		AddressFallback: envutil.Bool("REPLY_ADDRESS_FALLBACK", false),
		Lookback:        time.Duration(envutil.Int("IMAP_LOOKBACK_HOURS", 24)) * time.Hour,
		LockTTL:         envutil.Seconds("POLL_LOCK_TTL_SECONDS", 5*time.Minute),
		Concurrency:     envutil.Int("DISPATCH_CONCURRENCY", 4),
		DashboardURL:    envutil.String("APP_BASE_URL", "http://localhost:8080"),
		QuoteTimeout:    envutil.Seconds("QUOTE_TIMEOUT_SECONDS", 20*time.Second),
	}
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Marker) == "" {
		c.Marker = DefaultMarker
	}
	if c.Variant == "" {
		c.Variant = mood.VariantDual
	}
	if c.SubjectText == "" {
		c.SubjectText = "How are you doing?"
	}
	if c.Lookback <= 0 {
		c.Lookback = 24 * time.Hour
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 5 * time.Minute
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.QuoteTimeout <= 0 {
		c.QuoteTimeout = 20 * time.Second
	}
	return c
}
