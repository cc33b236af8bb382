package founder

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/desplega-ai/mood/internal/domain"
	domainfounder "github.com/desplega-ai/mood/internal/domain/founder"
	"github.com/desplega-ai/mood/internal/platform/dbctx"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

type FounderRepo interface {
	Create(dbc dbctx.Context, f *types.Founder) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Founder, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.Founder, error)
	GetOwned(dbc dbctx.Context, apiKeyID, id uuid.UUID) (*types.Founder, error)
	ListByAPIKey(dbc dbctx.Context, apiKeyID uuid.UUID) ([]*types.Founder, error)
	ListAllWithAPIKey(dbc dbctx.Context) ([]*types.Founder, error)
	CountByAPIKey(dbc dbctx.Context, apiKeyID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type founderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFounderRepo(db *gorm.DB, baseLog *logger.Logger) FounderRepo {
	repoLog := baseLog.With("repo", "FounderRepo")
	return &founderRepo{db: db, log: repoLog}
}

func (r *founderRepo) Create(dbc dbctx.Context, f *types.Founder) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if f == nil {
		return errors.New("founder required")
	}
	return transaction.WithContext(dbc.Ctx).Omit("APIKey").Create(f).Error
}

func (r *founderRepo) first(dbc dbctx.Context, query string, args ...interface{}) (*types.Founder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Founder
	if err := transaction.WithContext(dbc.Ctx).Where(query, args...).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *founderRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Founder, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc, "id = ?", id)
}

// GetByEmail matches the normalized address.
func (r *founderRepo) GetByEmail(dbc dbctx.Context, email string) (*types.Founder, error) {
	email = domainfounder.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	return r.first(dbc, "email = ?", email)
}

// GetOwned returns the founder only when it belongs to apiKeyID.
func (r *founderRepo) GetOwned(dbc dbctx.Context, apiKeyID, id uuid.UUID) (*types.Founder, error) {
	if id == uuid.Nil || apiKeyID == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc, "id = ? AND api_key_id = ?", id, apiKeyID)
}

func (r *founderRepo) ListByAPIKey(dbc dbctx.Context, apiKeyID uuid.UUID) ([]*types.Founder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	results := []*types.Founder{}
	if err := transaction.WithContext(dbc.Ctx).
		Where("api_key_id = ?", apiKeyID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *founderRepo) ListAllWithAPIKey(dbc dbctx.Context) ([]*types.Founder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	results := []*types.Founder{}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("APIKey").
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *founderRepo) CountByAPIKey(dbc dbctx.Context, apiKeyID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Founder{}).
		Where("api_key_id = ?", apiKeyID).
		Count(&n).Error
	return n, err
}

// UpdateFields applies a partial update. An "email" value is normalized.
func (r *founderRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if v, ok := updates["email"].(string); ok {
		updates["email"] = domainfounder.NormalizeEmail(v)
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Founder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the founder together with its mood entries.
func (r *founderRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("founder_id = ?", id).Delete(&types.MoodEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&types.Founder{}).Error
	})
}
