package cli

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/desplega-ai/mood/internal/data/db"
	"github.com/desplega-ai/mood/internal/data/repos"
	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/platform/dbctx"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

type SeedCmd struct {
	Token       string `help:"API key token to create." default:"desplega-dev-token-12345"`
	Company     string `help:"Company name on the key." default:"desplega.ai"`
	FounderName string `name:"founder-name" help:"Name of the first founder." default:"Taras"`
	FounderMail string `name:"founder-email" help:"Email of the first founder." default:"t@desplega.ai"`
}

func (s *SeedCmd) Run(c *Context) error {
	log, svc, err := openDB()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer svc.Close()

	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	res, err := Seed(c.Ctx, log, svc.DB(), SeedOptions{
		Token:        s.Token,
		CompanyName:  s.Company,
		FounderName:  s.FounderName,
		FounderEmail: s.FounderMail,
	})
	if err != nil {
		return err
	}
	return printJSON(res)
}

type SeedOptions struct {
	Token        string
	CompanyName  string
	FounderName  string
	FounderEmail string
}

type SeedResult struct {
	APIKeyID       string `json:"apiKeyId"`
	Token          string `json:"token"`
	FounderID      string `json:"founderId"`
	CreatedKey     bool   `json:"createdKey"`
	CreatedFounder bool   `json:"createdFounder"`
}

// Seed creates the development key and founder. Running it again reuses
// whatever already exists.
func Seed(ctx context.Context, log *logger.Logger, gdb *gorm.DB, opts SeedOptions) (*SeedResult, error) {
	log = log.With("service", "Seed")
	keys := repos.NewAPIKeyRepo(gdb, log)
	founders := repos.NewFounderRepo(gdb, log)
	out := &SeedResult{Token: opts.Token}

	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		key, err := keys.GetByToken(dbc, opts.Token)
		if err != nil {
			return err
		}
		if key == nil {
			key = &types.APIKey{Token: opts.Token, CompanyName: opts.CompanyName, Recurrence: types.RecurrenceDaily}
			if err := keys.Create(dbc, key); err != nil {
				return fmt.Errorf("create api key: %w", err)
			}
			out.CreatedKey = true
		}
		out.APIKeyID = key.ID.String()

		f, err := founders.GetByEmail(dbc, opts.FounderEmail)
		if err != nil {
			return err
		}
		if f == nil {
			f = &types.Founder{APIKeyID: key.ID, Name: opts.FounderName, Email: types.NormalizeEmail(opts.FounderEmail)}
			if err := founders.Create(dbc, f); err != nil {
				return fmt.Errorf("create founder: %w", err)
			}
			out.CreatedFounder = true
		}
		out.FounderID = f.ID.String()
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Seed complete", "tenant_id", out.APIKeyID, "founder_id", out.FounderID,
		"created_key", out.CreatedKey, "created_founder", out.CreatedFounder)
	return out, nil
}
