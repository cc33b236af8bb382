package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/desplega-ai/mood/internal/data/repos"
	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/domain/mood"
	"github.com/desplega-ai/mood/internal/platform/apierr"
	"github.com/desplega-ai/mood/internal/platform/dbctx"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

type Period string

const (
	PeriodAll     Period = "all"
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func ParsePeriod(s string) (Period, bool) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodAll, true
	case PeriodAll, PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p, true
	default:
		return "", false
	}
}

// Window returns the UTC [from, to) range containing now. Weeks start on
// Monday. PeriodAll has no bounds.
func (p Period) Window(now time.Time) (from, to *time.Time) {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var start, end time.Time
	switch p {
	case PeriodDaily:
		start, end = day, day.AddDate(0, 0, 1)
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 7)
	case PeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	default:
		return nil, nil
	}
	return &start, &end
}

type FounderSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type MoodEntryView struct {
	ID                 uuid.UUID       `json:"id"`
	FounderID          uuid.UUID       `json:"founderId"`
	Founder            *FounderSummary `json:"founder,omitempty"`
	Variant            types.Variant   `json:"variant"`
	TimeOfDay          types.TimeOfDay `json:"timeOfDay"`
	Status             string          `json:"status"`
	EmailSentAt        time.Time       `json:"emailSentAt"`
	RespondedAt        *time.Time      `json:"respondedAt"`
	Mood               *int            `json:"mood"`
	MoodYesterday      *int            `json:"moodYesterday"`
	MoodToday          *int            `json:"moodToday"`
	MoodLabel          string          `json:"moodLabel,omitempty"`
	MoodLabelYesterday string          `json:"moodLabelYesterday,omitempty"`
	MoodLabelToday     string          `json:"moodLabelToday,omitempty"`
	RawResponse        *string         `json:"rawResponse"`
	CreatedAt          time.Time       `json:"createdAt"`
}

func NewMoodEntryView(e *types.MoodEntry) MoodEntryView {
	v := MoodEntryView{
		ID:            e.ID,
		FounderID:     e.FounderID,
		Variant:       e.Variant,
		TimeOfDay:     e.TimeOfDay,
		Status:        e.State().String(),
		EmailSentAt:   e.EmailSentAt,
		RespondedAt:   e.RespondedAt,
		Mood:          e.Mood,
		MoodYesterday: e.MoodYesterday,
		MoodToday:     e.MoodToday,
		RawResponse:   e.RawResponse,
		CreatedAt:     e.CreatedAt,
	}
	if e.Founder != nil {
		v.Founder = &FounderSummary{ID: e.Founder.ID, Name: e.Founder.Name, Email: e.Founder.Email}
	}
	if e.Mood != nil {
		v.MoodLabel = mood.Label(*e.Mood)
	}
	if e.MoodYesterday != nil {
		v.MoodLabelYesterday = mood.Label(*e.MoodYesterday)
	}
	if e.MoodToday != nil {
		v.MoodLabelToday = mood.Label(*e.MoodToday)
	}
	return v
}

type MoodQuery struct {
	Period    string
	FounderID string
}

// MoodQueryService reads the authenticated tenant's mood history.
type MoodQueryService interface {
	List(ctx context.Context, q MoodQuery) ([]MoodEntryView, Period, error)
}

type moodQueryService struct {
	db      *gorm.DB
	log     *logger.Logger
	entries repos.MoodEntryRepo
	now     func() time.Time
}

func NewMoodQueryService(db *gorm.DB, log *logger.Logger, entries repos.MoodEntryRepo) MoodQueryService {
	return &moodQueryService{
		db:      db,
		log:     log.With("service", "MoodQueryService"),
		entries: entries,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *moodQueryService) List(ctx context.Context, q MoodQuery) ([]MoodEntryView, Period, error) {
	keyID, err := tenantID(ctx)
	if err != nil {
		return nil, "", err
	}
	period, ok := ParsePeriod(q.Period)
	if !ok {
		return nil, "", apierr.BadRequest("invalid_period", errors.New("period must be all, daily, weekly, or monthly"))
	}
	filter := repos.MoodListFilter{APIKeyID: keyID}
	filter.From, filter.To = period.Window(s.now())
	if raw := strings.TrimSpace(q.FounderID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, "", apierr.BadRequest("invalid_founder_id", errors.New("invalid founderId"))
		}
		filter.FounderID = &id
	}
	rows, err := s.entries.ListForAPIKey(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		return nil, "", err
	}
	out := make([]MoodEntryView, 0, len(rows))
	for _, e := range rows {
		out = append(out, NewMoodEntryView(e))
	}
	return out, period, nil
}
