package moodcheck

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/desplega-ai/mood/internal/data/repos"
	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/observability"
	"github.com/desplega-ai/mood/internal/platform/dbctx"
	"github.com/desplega-ai/mood/internal/platform/imap"
)

// MailboxError reports that the reply mailbox could not be read. Replies
// scored before the failure stay persisted.
type MailboxError struct {
	Op  string
	Err error
}

func (e *MailboxError) Error() string { return "mailbox " + e.Op + ": " + e.Err.Error() }
func (e *MailboxError) Unwrap() error { return e.Err }

// ReplyResult describes one scored reply.
type ReplyResult struct {
	Founder       string    `json:"founder"`
	Email         string    `json:"email"`
	EntryID       uuid.UUID `json:"entryId"`
	Status        string    `json:"status"`
	Mood          *int      `json:"mood,omitempty"`
	MoodYesterday *int      `json:"moodYesterday,omitempty"`
	MoodToday     *int      `json:"moodToday,omitempty"`
	Degraded      bool      `json:"degraded"`
}

type PollResult struct {
	Processed int                `json:"processed"`
	Results   []ReplyResult      `json:"results"`
	Skipped   map[SkipReason]int `json:"skipped,omitempty"`
	Scanned   int                `json:"scanned"`
	// Locked is set when another poll was already running; nothing was read.
	Locked bool `json:"locked,omitempty"`
	// Elapsed is wall-clock time spent on the mailbox pass.
	Elapsed time.Duration `json:"-"`
}

func (r *PollResult) skip(reason SkipReason) {
	if r.Skipped == nil {
		r.Skipped = map[SkipReason]int{}
	}
	r.Skipped[reason]++
}

// ProcessReplies runs one poll over the reply mailbox and scores every reply
// that answers a pending entry of its sender.
func (u Usecases) ProcessReplies(ctx context.Context) (*PollResult, error) {
	ctx, span := observability.StartSpan(ctx, "moodcheck.process_replies")
	defer span.End()

	release, ok, err := u.deps.Lock.TryAcquire(ctx, pollLockName, u.deps.Cfg.LockTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lock")
		return nil, &MailboxError{Op: "lock", Err: err}
	}
	if !ok {
		u.log.Info("Reply poll skipped, another poll is running")
		return &PollResult{Locked: true, Results: []ReplyResult{}}, nil
	}
	defer release()

	started := time.Now()
	out := &PollResult{Results: []ReplyResult{}}
	q := imap.Query{
		Since:   u.deps.Now().Add(-u.deps.Cfg.Lookback),
		Subject: u.deps.Cfg.Marker,
	}
	err = u.deps.Mailbox.Poll(ctx, q, func(ctx context.Context, msg imap.Message) (bool, error) {
		out.Scanned++
		res, reason, err := u.handleReply(ctx, msg)
		if err != nil {
			u.log.Error("Reply store failed", "uid", msg.UID, "error", err.Error())
		}
		if reason != "" {
			out.skip(reason)
			u.log.Debug("Reply skipped", "uid", msg.UID, "reason", string(reason), "sender", msg.From)
			return false, nil
		}
		out.Processed++
		out.Results = append(out.Results, *res)
		return true, nil
	})

	out.Elapsed = time.Since(started)
	span.SetAttributes(
		attribute.Int("moodcheck.scanned", out.Scanned),
		attribute.Int("moodcheck.processed", out.Processed),
	)
	u.log.Info("Reply poll complete",
		"scanned", out.Scanned,
		"processed", out.Processed,
		"skipped", out.Skipped,
		"duration_ms", out.Elapsed.Milliseconds(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mailbox")
		var op *imap.OpError
		if errors.As(err, &op) {
			return out, &MailboxError{Op: op.Op, Err: op.Err}
		}
		return out, &MailboxError{Op: "poll", Err: err}
	}
	return out, nil
}

func (u Usecases) handleReply(ctx context.Context, msg imap.Message) (*ReplyResult, SkipReason, error) {
	if msg.ParseErr != nil {
		return nil, ReasonParseFailed, nil
	}
	entry, reason, err := u.matcher.Resolve(ctx, msg)
	if reason != "" || err != nil {
		return nil, reason, err
	}
	return u.score(ctx, entry, msg.Body())
}

func (u Usecases) score(ctx context.Context, entry *types.MoodEntry, text string) (*ReplyResult, SkipReason, error) {
	cls := u.deps.Classifier.Classify(ctx, entry.Variant, text)
	return u.finalize(ctx, entry, text, cls)
}

// finalize writes cls to entry if it is still pending.
func (u Usecases) finalize(ctx context.Context, entry *types.MoodEntry, text string, cls Classification) (*ReplyResult, SkipReason, error) {
	ok, err := u.deps.Entries.FinalizeIfPending(dbctx.Context{Ctx: ctx}, entry.ID, repos.MoodFinalization{
		Variant:        entry.Variant,
		Scores:         cls.Scores,
		RawResponse:    text,
		Classification: cls.JSON(),
		RespondedAt:    u.deps.Now(),
	})
	if err != nil {
		return nil, ReasonStoreError, err
	}
	if !ok {
		return nil, ReasonAlreadyAnswered, nil
	}

	res := &ReplyResult{
		EntryID:  entry.ID,
		Status:   "scored",
		Degraded: cls.Degraded,
	}
	if entry.Founder != nil {
		res.Founder = entry.Founder.Name
		res.Email = entry.Founder.Email
	}
	if entry.Variant == types.VariantSingle {
		m := cls.Scores.Mood
		res.Mood = &m
	} else {
		y, t := cls.Scores.Yesterday, cls.Scores.Today
		res.MoodYesterday, res.MoodToday = &y, &t
	}
	return res, "", nil
}
