package mood

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/platform/dbctx"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

// Finalization is the write applied when a reply is accepted.
type Finalization struct {
	Variant        types.Variant
	Scores         types.Scores
	RawResponse    string
	Classification datatypes.JSON
	RespondedAt    time.Time
}

type ListFilter struct {
	APIKeyID  uuid.UUID
	FounderID *uuid.UUID
	From      *time.Time
	To        *time.Time
}

type MoodEntryRepo interface {
	Create(dbc dbctx.Context, e *types.MoodEntry) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MoodEntry, error)
	GetPendingByID(dbc dbctx.Context, id uuid.UUID) (*types.MoodEntry, error)
	GetLatestPendingForFounder(dbc dbctx.Context, founderID uuid.UUID) (*types.MoodEntry, error)
	FinalizeIfPending(dbc dbctx.Context, id uuid.UUID, fin Finalization) (bool, error)
	ListForAPIKey(dbc dbctx.Context, f ListFilter) ([]*types.MoodEntry, error)
}

type moodEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMoodEntryRepo(db *gorm.DB, baseLog *logger.Logger) MoodEntryRepo {
	repoLog := baseLog.With("repo", "MoodEntryRepo")
	return &moodEntryRepo{db: db, log: repoLog}
}

func (r *moodEntryRepo) Create(dbc dbctx.Context, e *types.MoodEntry) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if e == nil {
		return errors.New("mood entry required")
	}
	return transaction.WithContext(dbc.Ctx).Omit("Founder").Create(e).Error
}

func (r *moodEntryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MoodEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.MoodEntry
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

// GetPendingByID loads an unanswered entry with its founder, or nil.
func (r *moodEntryRepo) GetPendingByID(dbc dbctx.Context, id uuid.UUID) (*types.MoodEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.MoodEntry
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Founder").
		Where("id = ? AND responded_at IS NULL", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *moodEntryRepo) GetLatestPendingForFounder(dbc dbctx.Context, founderID uuid.UUID) (*types.MoodEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.MoodEntry
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Founder").
		Where("founder_id = ? AND responded_at IS NULL", founderID).
		Order("email_sent_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

// FinalizeIfPending writes the reply only while responded_at is NULL. It
// returns false when the entry is missing or already answered.
func (r *moodEntryRepo) FinalizeIfPending(dbc dbctx.Context, id uuid.UUID, fin Finalization) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return false, nil
	}
	if fin.RespondedAt.IsZero() {
		fin.RespondedAt = time.Now().UTC()
	}
	updates := map[string]interface{}{
		"responded_at": fin.RespondedAt.UTC(),
		"raw_response": fin.RawResponse,
		"updated_at":   time.Now().UTC(),
	}
	if len(fin.Classification) > 0 {
		updates["classification"] = fin.Classification
	}
	switch fin.Variant {
	case types.VariantSingle:
		updates["mood"] = fin.Scores.Mood
	default:
		updates["mood_yesterday"] = fin.Scores.Yesterday
		updates["mood_today"] = fin.Scores.Today
	}

	res := transaction.WithContext(dbc.Ctx).
		Model(&types.MoodEntry{}).
		Where("id = ? AND responded_at IS NULL", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListForAPIKey returns the tenant's entries oldest first. From is inclusive
// and To exclusive.
func (r *moodEntryRepo) ListForAPIKey(dbc dbctx.Context, f ListFilter) ([]*types.MoodEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.MoodEntry{}).
		Preload("Founder").
		Joins("JOIN founder ON founder.id = mood_entry.founder_id").
		Where("founder.api_key_id = ?", f.APIKeyID)
	if f.FounderID != nil {
		q = q.Where("mood_entry.founder_id = ?", *f.FounderID)
	}
	if f.From != nil {
		q = q.Where("mood_entry.created_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("mood_entry.created_at < ?", f.To.UTC())
	}
	results := []*types.MoodEntry{}
	if err := q.Order("mood_entry.created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
