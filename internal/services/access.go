package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/desplega-ai/mood/internal/data/dberr"
	"github.com/desplega-ai/mood/internal/data/repos"
	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/domain/tenant"
	"github.com/desplega-ai/mood/internal/platform/apierr"
	"github.com/desplega-ai/mood/internal/platform/ctxutil"
	"github.com/desplega-ai/mood/internal/platform/dbctx"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(s string) bool { return emailPattern.MatchString(strings.TrimSpace(s)) }

type AccessRequest struct {
	Name        string
	Email       string
	CompanyName string
}

type AccessSummary struct {
	APIKey        *types.APIKey
	FoundersCount int64
}

// AccessService owns tenant API keys: token lookup, self-service signup and
// the tenant's prompt recurrence.
type AccessService interface {
	Authenticate(ctx context.Context, token string) (*types.APIKey, error)
	Validate(ctx context.Context, token string) (*AccessSummary, error)
	RequestAccess(ctx context.Context, req AccessRequest) (*types.APIKey, error)
	GetRecurrence(ctx context.Context) (types.Recurrence, error)
	SetRecurrence(ctx context.Context, raw string) (*types.APIKey, error)
}

type accessService struct {
	db       *gorm.DB
	log      *logger.Logger
	keys     repos.APIKeyRepo
	founders repos.FounderRepo
	mailer   Mailer
	baseURL  string
}

func NewAccessService(db *gorm.DB, log *logger.Logger, keys repos.APIKeyRepo, founders repos.FounderRepo, mailer Mailer, baseURL string) AccessService {
	return &accessService{
		db:       db,
		log:      log.With("service", "AccessService"),
		keys:     keys,
		founders: founders,
		mailer:   mailer,
		baseURL:  baseURL,
	}
}

var errInvalidToken = apierr.Unauthorized("invalid_token", errors.New("invalid token"))

func (s *accessService) Authenticate(ctx context.Context, token string) (*types.APIKey, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apierr.Unauthorized("missing_token", errors.New("missing token"))
	}
	key, err := s.keys.GetByToken(dbctx.Context{Ctx: ctx}, token)
	if err != nil {
		return nil, fmt.Errorf("lookup api key: %w", err)
	}
	if key == nil {
		return nil, errInvalidToken
	}
	return key, nil
}

func (s *accessService) Validate(ctx context.Context, token string) (*AccessSummary, error) {
	key, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	n, err := s.founders.CountByAPIKey(dbctx.Context{Ctx: ctx}, key.ID)
	if err != nil {
		return nil, fmt.Errorf("count founders: %w", err)
	}
	return &AccessSummary{APIKey: key, FoundersCount: n}, nil
}

// RequestAccess creates a tenant with its first founder and mails the token.
// A failed welcome email rolls the signup back so it can be retried.
func (s *accessService) RequestAccess(ctx context.Context, req AccessRequest) (*types.APIKey, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = types.NormalizeEmail(req.Email)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.Name == "" || req.Email == "" || req.CompanyName == "" {
		return nil, apierr.BadRequest("missing_fields", errors.New("name, email, and company name are required"))
	}
	if !ValidEmail(req.Email) {
		return nil, apierr.BadRequest("invalid_email", errors.New("invalid email format"))
	}

	token, err := tenant.NewToken()
	if err != nil {
		return nil, err
	}
	key := &types.APIKey{Token: token, CompanyName: req.CompanyName, Recurrence: types.RecurrenceDaily}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := s.founders.GetByEmail(inner, req.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return apierr.Conflict("email_taken", errors.New("a founder with this email already exists"))
		}
		if err := s.keys.Create(inner, key); err != nil {
			return err
		}
		if err := s.founders.Create(inner, &types.Founder{APIKeyID: key.ID, Name: req.Name, Email: req.Email}); err != nil {
			return err
		}
		if err := s.mailer.Send(ctx, Email{
			To:      req.Email,
			ToName:  req.Name,
			Subject: "Welcome to Mood Tracker - Your API Key",
			Text:    WelcomeBody(req.Name, req.CompanyName, token, s.baseURL),
		}); err != nil {
			return apierr.New(http.StatusBadGateway, "email_failed", fmt.Errorf("send welcome email: %w", err))
		}
		return nil
	})
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, apierr.Conflict("email_taken", errors.New("a founder with this email already exists"))
		}
		s.log.Warn("Request access failed", "email", req.Email, "error", err.Error())
		return nil, err
	}
	s.log.Info("API key created", "tenant_id", key.ID, "company", req.CompanyName)
	return key, nil
}

func (s *accessService) current(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.APIKeyID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized", errors.New("unauthorized"))
	}
	return rd.APIKeyID, nil
}

func (s *accessService) GetRecurrence(ctx context.Context) (types.Recurrence, error) {
	id, err := s.current(ctx)
	if err != nil {
		return "", err
	}
	key, err := s.keys.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return "", err
	}
	if key == nil {
		return "", errInvalidToken
	}
	return key.Recurrence, nil
}

func (s *accessService) SetRecurrence(ctx context.Context, raw string) (*types.APIKey, error) {
	id, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	r, ok := tenant.ParseRecurrence(raw)
	if !ok {
		return nil, apierr.BadRequest("invalid_recurrence", errors.New("recurrence must be daily, weekly, or monthly"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.keys.UpdateRecurrence(dbc, id, r); err != nil {
		return nil, err
	}
	key, err := s.keys.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, errInvalidToken
	}
	return key, nil
}

// WelcomeBody renders the signup email carrying the tenant token.
func WelcomeBody(name, company, token, dashboardURL string) string {
	return "Hi " + name + "!\n\n" +
		"Welcome to Mood Tracker for " + company + "!\n\n" +
		"Your API key has been created. Use this key to access your mood tracking dashboard:\n\n" +
		"API Key: " + token + "\n\n" +
		"Access your dashboard here: " + dashboardURL + "\n\n" +
		"Next steps:\n" +
		"1. Visit " + dashboardURL + "\n" +
		"2. Enter your API key\n" +
		"3. Configure founders who will receive mood check emails\n" +
		"4. Start tracking mood trends!\n\n" +
		"If you have any questions, feel free to reply to this email.\n\n" +
		"Best regards,\nThe Mood Tracker Team"
}
