package tenant

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APIKey is the company account that owns founders. Token is the opaque
// bearer credential used by the dashboard.
type APIKey struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Token       string     `gorm:"type:text;not null;uniqueIndex" json:"-"`
	CompanyName string     `gorm:"column:company_name;type:text;not null" json:"companyName"`
	Recurrence  Recurrence `gorm:"type:text;not null;default:'daily'" json:"recurrence"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (APIKey) TableName() string { return "api_key" }

func (k *APIKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	if k.Recurrence == "" {
		k.Recurrence = RecurrenceDaily
	}
	return nil
}

const TokenPrefix = "mood-"

// NewToken returns "mood-" followed by 32 hex characters.
func NewToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return TokenPrefix + hex.EncodeToString(b), nil
}

type Recurrence string

const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func ParseRecurrence(s string) (Recurrence, bool) {
	switch r := Recurrence(strings.ToLower(strings.TrimSpace(s))); r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return r, true
	default:
		return "", false
	}
}

// Due reports whether prompts go out on the UTC day of t: weekly on
// Mondays, monthly on the first.
func (r Recurrence) Due(t time.Time) bool {
	t = t.UTC()
	switch r {
	case RecurrenceWeekly:
		return t.Weekday() == time.Monday
	case RecurrenceMonthly:
		return t.Day() == 1
	default:
		return true
	}
}
