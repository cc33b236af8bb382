package domain

import (
	"github.com/desplega-ai/mood/internal/domain/founder"
	"github.com/desplega-ai/mood/internal/domain/mood"
	"github.com/desplega-ai/mood/internal/domain/tenant"
)

type APIKey = tenant.APIKey
type Recurrence = tenant.Recurrence
type Founder = founder.Founder
type MoodEntry = mood.MoodEntry
type Variant = mood.Variant
type TimeOfDay = mood.TimeOfDay
type Scores = mood.Scores

const (
	RecurrenceDaily   = tenant.RecurrenceDaily
	RecurrenceWeekly  = tenant.RecurrenceWeekly
	RecurrenceMonthly = tenant.RecurrenceMonthly

	VariantSingle = mood.VariantSingle
	VariantDual   = mood.VariantDual

	Morning   = mood.Morning
	Afternoon = mood.Afternoon
)

var NormalizeEmail = founder.NormalizeEmail

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&tenant.APIKey{},
		&founder.Founder{},
		&mood.MoodEntry{},
	}
}
