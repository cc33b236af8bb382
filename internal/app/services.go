package app

import (
	"gorm.io/gorm"

	"github.com/desplega-ai/mood/internal/modules/moodcheck"
	"github.com/desplega-ai/mood/internal/platform/logger"
	"github.com/desplega-ai/mood/internal/services"
)

type Services struct {
	Access    services.AccessService
	Founders  services.FounderService
	Moods     services.MoodQueryService
	MoodCheck moodcheck.Usecases
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")
	return Services{
		Access:   services.NewAccessService(db, log, r.APIKey, r.Founder, c.Mailer, cfg.MoodCheck.DashboardURL),
		Founders: services.NewFounderService(db, log, r.Founder),
		Moods:    services.NewMoodQueryService(db, log, r.MoodEntry),
		MoodCheck: moodcheck.New(moodcheck.UsecasesDeps{
			Log:        log,
			Cfg:        cfg.MoodCheck,
			Entries:    r.MoodEntry,
			Founders:   r.Founder,
			Mailbox:    c.Mailbox,
			Classifier: moodcheck.NewClassifier(log, c.Classifier, cfg.ClassifierTimeout),
			Mailer:     c.Mailer,
			Lock:       c.Lock,
			Quotes:     c.Quotes,
		}),
	}
}
