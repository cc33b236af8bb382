package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/desplega-ai/mood/internal/data/dberr"
	"github.com/desplega-ai/mood/internal/data/repos"
	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/platform/apierr"
	"github.com/desplega-ai/mood/internal/platform/ctxutil"
	"github.com/desplega-ai/mood/internal/platform/dbctx"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

type FounderPatch struct {
	Name  *string
	Email *string
}

// FounderService manages the founders of the authenticated tenant.
type FounderService interface {
	List(ctx context.Context) ([]*types.Founder, error)
	Create(ctx context.Context, name, email string) (*types.Founder, error)
	Update(ctx context.Context, id uuid.UUID, patch FounderPatch) (*types.Founder, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type founderService struct {
	db       *gorm.DB
	log      *logger.Logger
	founders repos.FounderRepo
}

func NewFounderService(db *gorm.DB, log *logger.Logger, founders repos.FounderRepo) FounderService {
	return &founderService{db: db, log: log.With("service", "FounderService"), founders: founders}
}

var (
	errFounderNotFound = apierr.NotFound("founder_not_found", errors.New("founder not found"))
	errEmailTaken      = apierr.Conflict("email_taken", errors.New("a founder with this email already exists"))
)

func tenantID(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.APIKeyID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized", errors.New("unauthorized"))
	}
	return rd.APIKeyID, nil
}

func (s *founderService) List(ctx context.Context) ([]*types.Founder, error) {
	keyID, err := tenantID(ctx)
	if err != nil {
		return nil, err
	}
	return s.founders.ListByAPIKey(dbctx.Context{Ctx: ctx}, keyID)
}

func (s *founderService) Create(ctx context.Context, name, email string) (*types.Founder, error) {
	keyID, err := tenantID(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	email = types.NormalizeEmail(email)
	if name == "" || email == "" {
		return nil, apierr.BadRequest("missing_fields", errors.New("name and email are required"))
	}
	if !ValidEmail(email) {
		return nil, apierr.BadRequest("invalid_email", errors.New("invalid email format"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := s.founders.GetByEmail(dbc, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errEmailTaken
	}
	f := &types.Founder{APIKeyID: keyID, Name: name, Email: email}
	if err := s.founders.Create(dbc, f); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, errEmailTaken
		}
		return nil, err
	}
	s.log.Info("Founder created", "founder_id", f.ID, "tenant_id", keyID)
	return f, nil
}

func (s *founderService) owned(ctx context.Context, id uuid.UUID) (*types.Founder, error) {
	keyID, err := tenantID(ctx)
	if err != nil {
		return nil, err
	}
	f, err := s.founders.GetOwned(dbctx.Context{Ctx: ctx}, keyID, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errFounderNotFound
	}
	return f, nil
}

func (s *founderService) Update(ctx context.Context, id uuid.UUID, patch FounderPatch) (*types.Founder, error) {
	f, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apierr.BadRequest("invalid_name", errors.New("name cannot be empty"))
		}
		updates["name"] = name
	}
	dbc := dbctx.Context{Ctx: ctx}
	if patch.Email != nil {
		email := types.NormalizeEmail(*patch.Email)
		if !ValidEmail(email) {
			return nil, apierr.BadRequest("invalid_email", errors.New("invalid email format"))
		}
		if email != f.Email {
			other, err := s.founders.GetByEmail(dbc, email)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, errEmailTaken
			}
			updates["email"] = email
		}
	}
	if len(updates) > 0 {
		if err := s.founders.UpdateFields(dbc, f.ID, updates); err != nil {
			if dberr.IsUniqueViolation(err) {
				return nil, errEmailTaken
			}
			return nil, err
		}
	}
	return s.founders.GetByID(dbc, f.ID)
}

func (s *founderService) Delete(ctx context.Context, id uuid.UUID) error {
	f, err := s.owned(ctx, id)
	if err != nil {
		return err
	}
	if err := s.founders.Delete(dbctx.Context{Ctx: ctx}, f.ID); err != nil {
		return err
	}
	s.log.Info("Founder deleted", "founder_id", f.ID)
	return nil
}
