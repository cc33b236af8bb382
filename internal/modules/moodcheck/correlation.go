package moodcheck

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/desplega-ai/mood/internal/data/repos"
	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/platform/dbctx"
	"github.com/desplega-ai/mood/internal/platform/imap"
)

// SkipReason explains why a reply was not scored.
type SkipReason string

const (
	ReasonParseFailed     SkipReason = "parse_failed"
	ReasonNoToken         SkipReason = "no_token"
	ReasonNoPendingEntry  SkipReason = "no_pending_entry"
	ReasonUnknownSender   SkipReason = "unknown_sender"
	ReasonSenderMismatch  SkipReason = "sender_mismatch"
	ReasonAlreadyAnswered SkipReason = "already_answered"
	ReasonStoreError      SkipReason = "store_error"
)

// TokenPattern matches "[<marker>-<id>]" anywhere in a subject, so reply
// prefixes like "Re:" or "AW:" do not matter.
func TokenPattern(marker string) *regexp.Regexp {
	return regexp.MustCompile(`\[` + regexp.QuoteMeta(marker) + `-([^\]]+)\]`)
}

// SubjectFor builds the outbound subject for an entry.
func SubjectFor(marker string, entryID uuid.UUID, text string) string {
	return "[" + marker + "-" + entryID.String() + "] " + text
}

// Matcher resolves an inbound reply to the pending entry it answers.
type Matcher struct {
	Marker          string
	AddressFallback bool
	Entries         repos.MoodEntryRepo
	Founders        repos.FounderRepo

	token *regexp.Regexp
}

// ExtractToken returns the entry identifier carried in subject, if any.
func (m *Matcher) ExtractToken(subject string) (string, bool) {
	match := m.token.FindStringSubmatch(subject)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}

// HasMarker reports whether the marker literal appears at all.
func (m *Matcher) HasMarker(subject string) bool {
	return strings.Contains(subject, m.Marker)
}

// SenderMatches requires the sender to equal the founder address exactly.
// Only surrounding whitespace is ignored.
func SenderMatches(sender, founderEmail string) bool {
	s := strings.TrimSpace(sender)
	return s != "" && s == strings.TrimSpace(founderEmail)
}

// Resolve finds the pending entry for msg. A non-empty reason means the
// message must be skipped; err is reserved for store failures.
func (m *Matcher) Resolve(ctx context.Context, msg imap.Message) (*types.MoodEntry, SkipReason, error) {
	dbc := dbctx.Context{Ctx: ctx}

	var entry *types.MoodEntry
	if raw, ok := m.ExtractToken(msg.Subject); ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, ReasonNoPendingEntry, nil
		}
		entry, err = m.Entries.GetPendingByID(dbc, id)
		if err != nil {
			return nil, ReasonStoreError, err
		}
		if entry == nil {
			return nil, ReasonNoPendingEntry, nil
		}
	} else {
		if !m.AddressFallback || !m.HasMarker(msg.Subject) {
			return nil, ReasonNoToken, nil
		}
		f, err := m.Founders.GetByEmail(dbc, msg.From)
		if err != nil {
			return nil, ReasonStoreError, err
		}
		if f == nil {
			return nil, ReasonUnknownSender, nil
		}
		entry, err = m.Entries.GetLatestPendingForFounder(dbc, f.ID)
		if err != nil {
			return nil, ReasonStoreError, err
		}
		if entry == nil {
			return nil, ReasonNoPendingEntry, nil
		}
		entry.Founder = f
	}

	if entry.Founder == nil {
		f, err := m.Founders.GetByID(dbc, entry.FounderID)
		if err != nil {
			return nil, ReasonStoreError, err
		}
		if f == nil {
			return nil, ReasonNoPendingEntry, nil
		}
		entry.Founder = f
	}
	if !SenderMatches(msg.From, entry.Founder.Email) {
		return nil, ReasonSenderMismatch, nil
	}
	return entry, "", nil
}
