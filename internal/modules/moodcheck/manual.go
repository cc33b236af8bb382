package moodcheck

import (
	"context"
	"errors"
	"strings"

	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/platform/apierr"
	"github.com/desplega-ai/mood/internal/platform/dbctx"
)

type ManualResult struct {
	Founder        *types.Founder
	EntryID        string
	Variant        types.Variant
	Classification Classification
	RawResponse    string
}

// ProcessManual scores text as a reply from email to their latest pending
// entry, bypassing the mailbox.
func (u Usecases) ProcessManual(ctx context.Context, email, text string) (*ManualResult, error) {
	email = types.NormalizeEmail(email)
	if email == "" || strings.TrimSpace(text) == "" {
		return nil, apierr.BadRequest("missing_fields", errors.New("email and text are required"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	f, err := u.deps.Founders.GetByEmail(dbc, email)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, apierr.NotFound("founder_not_found", errors.New("founder not found"))
	}
	entry, err := u.deps.Entries.GetLatestPendingForFounder(dbc, f.ID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apierr.NotFound("no_pending_entry", errors.New("no pending mood entry for founder"))
	}
	entry.Founder = f

	cls := u.deps.Classifier.Classify(ctx, entry.Variant, text)
	_, reason, err := u.finalize(ctx, entry, text, cls)
	if err != nil {
		return nil, err
	}
	if reason == ReasonAlreadyAnswered {
		return nil, apierr.Conflict("already_answered", errors.New("mood entry already answered"))
	}
	return &ManualResult{
		Founder:        f,
		EntryID:        entry.ID.String(),
		Variant:        entry.Variant,
		Classification: cls,
		RawResponse:    text,
	}, nil
}
