package mood

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/desplega-ai/mood/internal/domain/founder"
)

type Variant string

const (
	VariantSingle Variant = "single"
	VariantDual   Variant = "dual"
)

func ParseVariant(s string) (Variant, bool) {
	switch v := Variant(s); v {
	case VariantSingle, VariantDual:
		return v, true
	default:
		return "", false
	}
}

type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
)

func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	switch t := TimeOfDay(s); t {
	case Morning, Afternoon:
		return t, true
	default:
		return "", false
	}
}

// MoodEntry is one prompt/reply pair. RespondedAt is nil while pending and is
// written at most once.
type MoodEntry struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	FounderID uuid.UUID        `gorm:"type:uuid;not null;index" json:"founderId"`
	Founder   *founder.Founder `gorm:"foreignKey:FounderID;constraint:OnDelete:CASCADE" json:"founder,omitempty"`

	Variant     Variant    `gorm:"type:text;not null;default:'dual'" json:"variant"`
	TimeOfDay   TimeOfDay  `gorm:"column:time_of_day;type:text;not null" json:"timeOfDay"`
	EmailSentAt time.Time  `gorm:"column:email_sent_at;not null;index" json:"emailSentAt"`
	RespondedAt *time.Time `gorm:"column:responded_at;index" json:"respondedAt"`

	Mood          *int `json:"mood"`
	MoodYesterday *int `gorm:"column:mood_yesterday" json:"moodYesterday"`
	MoodToday     *int `gorm:"column:mood_today" json:"moodToday"`

	RawResponse    *string        `gorm:"column:raw_response;type:text" json:"rawResponse"`
	Classification datatypes.JSON `json:"classification,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (MoodEntry) TableName() string { return "mood_entry" }

func (e *MoodEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Variant == "" {
		e.Variant = VariantDual
	}
	if e.EmailSentAt.IsZero() {
		e.EmailSentAt = time.Now().UTC()
	}
	return nil
}

type EntryState int

const (
	EntryPending EntryState = iota
	EntryAnswered
)

func (s EntryState) String() string {
	if s == EntryAnswered {
		return "answered"
	}
	return "pending"
}

func (e *MoodEntry) State() EntryState {
	if e == nil || e.RespondedAt == nil {
		return EntryPending
	}
	return EntryAnswered
}

// Scores are the values written when an entry is finalized. Single entries
// use Mood; dual entries use Yesterday and Today.
type Scores struct {
	Mood      int `json:"mood"`
	Yesterday int `json:"moodYesterday"`
	Today     int `json:"moodToday"`
}
