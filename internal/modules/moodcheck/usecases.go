package moodcheck

import (
	"context"
	"time"

	"github.com/desplega-ai/mood/internal/data/repos"
	"github.com/desplega-ai/mood/internal/platform/imap"
	"github.com/desplega-ai/mood/internal/platform/logger"
	"github.com/desplega-ai/mood/internal/platform/openai"
	"github.com/desplega-ai/mood/internal/services"
)

// Mailbox runs one read pass over the shared reply mailbox.
type Mailbox interface {
	Poll(ctx context.Context, q imap.Query, fn imap.Handler) error
}

type UsecasesDeps struct {
	Log *logger.Logger
	Cfg Config

	Entries  repos.MoodEntryRepo
	Founders repos.FounderRepo

	Mailbox    Mailbox
	Classifier Classifier
	Mailer     services.Mailer
	Lock       PollLock
	// Quotes is optional; prompts go out without a quote when nil.
	Quotes openai.Client

	Now func() time.Time
}

type Usecases struct {
	deps    UsecasesDeps
	log     *logger.Logger
	matcher *Matcher
}

func New(deps UsecasesDeps) Usecases {
	deps.Cfg = deps.Cfg.withDefaults()
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.Lock == nil {
		deps.Lock = NewLocalLock()
	}
	log := deps.Log.With("service", "MoodCheck")
	return Usecases{
		deps: deps,
		log:  log,
		matcher: &Matcher{
			Marker:          deps.Cfg.Marker,
			AddressFallback: deps.Cfg.AddressFallback,
			Entries:         deps.Entries,
			Founders:        deps.Founders,
			token:           TokenPattern(deps.Cfg.Marker),
		},
	}
}

func (u Usecases) Config() Config { return u.deps.Cfg }
