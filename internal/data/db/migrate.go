package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/desplega-ai/mood/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return err
	}
	return ensureIndexes(db)
}

func ensureIndexes(db *gorm.DB) error {
	// Pending lookups by founder, newest prompt first.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_mood_entry_pending_founder
		ON mood_entry (founder_id, email_sent_at DESC)
		WHERE responded_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_mood_entry_pending_founder: %w", err)
	}
	return nil
}
