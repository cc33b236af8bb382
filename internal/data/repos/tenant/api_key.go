package tenant

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/platform/dbctx"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

type APIKeyRepo interface {
	Create(dbc dbctx.Context, key *types.APIKey) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.APIKey, error)
	GetByToken(dbc dbctx.Context, token string) (*types.APIKey, error)
	UpdateRecurrence(dbc dbctx.Context, id uuid.UUID, recurrence types.Recurrence) (bool, error)
}

type apiKeyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAPIKeyRepo(db *gorm.DB, baseLog *logger.Logger) APIKeyRepo {
	repoLog := baseLog.With("repo", "APIKeyRepo")
	return &apiKeyRepo{db: db, log: repoLog}
}

func (r *apiKeyRepo) Create(dbc dbctx.Context, key *types.APIKey) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if key == nil {
		return errors.New("api key required")
	}
	return transaction.WithContext(dbc.Ctx).Create(key).Error
}

func (r *apiKeyRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.APIKey, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.APIKey
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

// GetByToken returns nil when no key matches.
func (r *apiKeyRepo) GetByToken(dbc dbctx.Context, token string) (*types.APIKey, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if token == "" {
		return nil, nil
	}
	var out types.APIKey
	err := transaction.WithContext(dbc.Ctx).Where("token = ?", token).Limit(1).Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *apiKeyRepo) UpdateRecurrence(dbc dbctx.Context, id uuid.UUID, recurrence types.Recurrence) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.APIKey{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"recurrence": string(recurrence),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
