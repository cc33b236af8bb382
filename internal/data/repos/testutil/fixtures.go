package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/desplega-ai/mood/internal/domain"
)

func SeedAPIKey(tb testing.TB, tx *gorm.DB, recurrence types.Recurrence) *types.APIKey {
	tb.Helper()
	k := &types.APIKey{
		Token:       "mood-" + uuid.NewString()[:8] + uuid.NewString()[:8],
		CompanyName: "Acme",
		Recurrence:  recurrence,
	}
	if err := tx.WithContext(context.Background()).Create(k).Error; err != nil {
		tb.Fatalf("seed api key: %v", err)
	}
	return k
}

func SeedFounder(tb testing.TB, tx *gorm.DB, apiKeyID uuid.UUID, name string) *types.Founder {
	tb.Helper()
	f := &types.Founder{
		APIKeyID: apiKeyID,
		Name:     name,
		Email:    name + "-" + uuid.NewString()[:8] + "@acme.io",
	}
	if err := tx.WithContext(context.Background()).Create(f).Error; err != nil {
		tb.Fatalf("seed founder: %v", err)
	}
	return f
}

func SeedEntry(tb testing.TB, tx *gorm.DB, founderID uuid.UUID, variant types.Variant, sentAt time.Time) *types.MoodEntry {
	tb.Helper()
	e := &types.MoodEntry{
		FounderID:   founderID,
		Variant:     variant,
		TimeOfDay:   types.Morning,
		EmailSentAt: sentAt.UTC(),
	}
	if err := tx.WithContext(context.Background()).Create(e).Error; err != nil {
		tb.Fatalf("seed entry: %v", err)
	}
	return e
}
