package app

import (
	"gorm.io/gorm"

	"github.com/desplega-ai/mood/internal/data/repos"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

type Repos struct {
	APIKey    repos.APIKeyRepo
	Founder   repos.FounderRepo
	MoodEntry repos.MoodEntryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		APIKey:    repos.NewAPIKeyRepo(db, log),
		Founder:   repos.NewFounderRepo(db, log),
		MoodEntry: repos.NewMoodEntryRepo(db, log),
	}
}
