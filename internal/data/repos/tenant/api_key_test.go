package tenant

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/desplega-ai/mood/internal/data/dberr"
	"github.com/desplega-ai/mood/internal/data/repos/testutil"
	types "github.com/desplega-ai/mood/internal/domain"
	domaintenant "github.com/desplega-ai/mood/internal/domain/tenant"
	"github.com/desplega-ai/mood/internal/platform/dbctx"
)

func TestAPIKeyRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewAPIKeyRepo(db, testutil.Logger(t))

	tok, _ := domaintenant.NewToken()
	key := &types.APIKey{Token: tok, CompanyName: "Acme"}
	if err := repo.Create(dbc, key); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if key.Recurrence != types.RecurrenceDaily {
		t.Fatalf("default recurrence should be daily, got %q", key.Recurrence)
	}

	got, err := repo.GetByToken(dbc, tok)
	if err != nil || got == nil || got.ID != key.ID {
		t.Fatalf("GetByToken: got=%v err=%v", got, err)
	}
	if missing, err := repo.GetByToken(dbc, "mood-nope"); err != nil || missing != nil {
		t.Fatalf("GetByToken(unknown): got=%v err=%v", missing, err)
	}

	ok, err := repo.UpdateRecurrence(dbc, key.ID, types.RecurrenceWeekly)
	if err != nil || !ok {
		t.Fatalf("UpdateRecurrence: ok=%v err=%v", ok, err)
	}
	got, _ = repo.GetByID(dbc, key.ID)
	if got.Recurrence != types.RecurrenceWeekly {
		t.Fatalf("recurrence not updated: %q", got.Recurrence)
	}
}

func TestAPIKeyRepoDuplicateToken(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewAPIKeyRepo(db, testutil.Logger(t))

	tok, _ := domaintenant.NewToken()
	if err := repo.Create(dbc, &types.APIKey{Token: tok, CompanyName: "A"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Postgres aborts the transaction on error, so the duplicate runs in a savepoint.
	err := tx.Transaction(func(inner *gorm.DB) error {
		return repo.Create(dbctx.Context{Ctx: context.Background(), Tx: inner}, &types.APIKey{Token: tok, CompanyName: "B"})
	})
	if !dberr.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}
