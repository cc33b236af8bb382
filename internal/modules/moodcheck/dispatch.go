package moodcheck

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/observability"
	"github.com/desplega-ai/mood/internal/platform/dbctx"
	"github.com/desplega-ai/mood/internal/services"
)

const (
	DispatchSent    = "sent"
	DispatchFailed  = "failed"
	DispatchSkipped = "skipped"
)

const quoteSystemPrompt = `You write short motivational quotes for startup founders.
Respond with the quote only, one or two sentences, no quotation marks and no attribution.`

type DispatchResult struct {
	Founder string     `json:"founder"`
	Email   string     `json:"email"`
	EntryID *uuid.UUID `json:"entryId,omitempty"`
	Status  string     `json:"status"`
	Error   string     `json:"error,omitempty"`
}

type DispatchSummary struct {
	Sent    int              `json:"sent"`
	Failed  int              `json:"failed"`
	Skipped int              `json:"skipped"`
	Results []DispatchResult `json:"results"`
}

// SendPrompts creates a pending entry for every founder whose tenant is due
// today and mails the prompt carrying the entry id in its subject.
func (u Usecases) SendPrompts(ctx context.Context, slot types.TimeOfDay) (*DispatchSummary, error) {
	ctx, span := observability.StartSpan(ctx, "moodcheck.send_prompts", attribute.String("moodcheck.slot", string(slot)))
	defer span.End()

	founders, err := u.deps.Founders.ListAllWithAPIKey(dbctx.Context{Ctx: ctx})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	now := u.deps.Now()
	quote := u.quote(ctx, slot)

	results := make([]DispatchResult, len(founders))
	var sent, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.deps.Cfg.Concurrency)
	for i, f := range founders {
		results[i] = DispatchResult{Founder: f.Name, Email: f.Email}
		if f.APIKey != nil && !f.APIKey.Recurrence.Due(now) {
			results[i].Status = DispatchSkipped
			continue
		}
		g.Go(func() error {
			id, err := u.sendPrompt(gctx, f, slot, quote)
			if id != uuid.Nil {
				results[i].EntryID = &id
			}
			if err != nil {
				u.log.Warn("Prompt send failed", "founder_id", f.ID, "email", f.Email, "error", err.Error())
				results[i].Status = DispatchFailed
				results[i].Error = err.Error()
				atomic.AddInt64(&failed, 1)
				return nil
			}
			results[i].Status = DispatchSent
			atomic.AddInt64(&sent, 1)
			return nil
		})
	}
	_ = g.Wait()

	out := &DispatchSummary{Sent: int(sent), Failed: int(failed), Results: results}
	out.Skipped = len(results) - out.Sent - out.Failed
	span.SetAttributes(
		attribute.Int("moodcheck.sent", out.Sent),
		attribute.Int("moodcheck.failed", out.Failed),
	)
	u.log.Info("Prompt dispatch complete", "slot", slot, "sent", out.Sent, "failed", out.Failed, "skipped", out.Skipped)
	return out, nil
}

// sendPrompt persists the entry before sending so the subject can carry its id.
func (u Usecases) sendPrompt(ctx context.Context, f *types.Founder, slot types.TimeOfDay, quote string) (uuid.UUID, error) {
	entry := &types.MoodEntry{
		FounderID:   f.ID,
		Variant:     u.deps.Cfg.Variant,
		TimeOfDay:   slot,
		EmailSentAt: u.deps.Now(),
	}
	if err := u.deps.Entries.Create(dbctx.Context{Ctx: ctx}, entry); err != nil {
		return uuid.Nil, err
	}
	err := u.deps.Mailer.Send(ctx, services.Email{
		To:      f.Email,
		ToName:  f.Name,
		Subject: SubjectFor(u.deps.Cfg.Marker, entry.ID, u.deps.Cfg.SubjectText),
		Text:    PromptBody(f.Name, entry.Variant, quote, u.deps.Cfg.DashboardURL),
	})
	return entry.ID, err
}

// quote is best effort; any failure yields "".
func (u Usecases) quote(ctx context.Context, slot types.TimeOfDay) string {
	if u.deps.Quotes == nil {
		return ""
	}
	qctx, cancel := context.WithTimeout(ctx, u.deps.Cfg.QuoteTimeout)
	defer cancel()
	q, err := u.deps.Quotes.GenerateText(qctx, quoteSystemPrompt, "Write one motivational quote for the "+string(slot)+".")
	if err != nil {
		u.log.Warn("Quote generation failed", "slot", slot, "error", err.Error())
		return ""
	}
	return strings.Trim(strings.TrimSpace(q), `"`)
}

// PromptBody renders the plain-text prompt.
func PromptBody(name string, variant types.Variant, quote, dashboardURL string) string {
	var b strings.Builder
	b.WriteString("Hi " + name + ",\n\n")
	if variant == types.VariantSingle {
		b.WriteString("How are you feeling today?\n\n")
	} else {
		b.WriteString("Two quick questions:\n\n1. How was yesterday?\n2. How do you feel about today?\n\n")
	}
	if quote != "" {
		b.WriteString("\"" + quote + "\"\n\n")
	}
	b.WriteString("Just reply to this email with your thoughts.")
	if dashboardURL != "" {
		b.WriteString("\n\nView your mood dashboard: " + dashboardURL)
	}
	return b.String()
}
