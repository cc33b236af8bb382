package repos

import (
	"gorm.io/gorm"

	"github.com/desplega-ai/mood/internal/data/repos/founder"
	"github.com/desplega-ai/mood/internal/data/repos/mood"
	"github.com/desplega-ai/mood/internal/data/repos/tenant"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

type APIKeyRepo = tenant.APIKeyRepo
type FounderRepo = founder.FounderRepo
type MoodEntryRepo = mood.MoodEntryRepo

type MoodFinalization = mood.Finalization
type MoodListFilter = mood.ListFilter

func NewAPIKeyRepo(db *gorm.DB, baseLog *logger.Logger) APIKeyRepo {
	return tenant.NewAPIKeyRepo(db, baseLog)
}
func NewFounderRepo(db *gorm.DB, baseLog *logger.Logger) FounderRepo {
	return founder.NewFounderRepo(db, baseLog)
}
func NewMoodEntryRepo(db *gorm.DB, baseLog *logger.Logger) MoodEntryRepo {
	return mood.NewMoodEntryRepo(db, baseLog)
}
