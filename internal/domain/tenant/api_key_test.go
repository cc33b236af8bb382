package tenant

import (
	"strings"
	"testing"
	"time"
)

func TestNewTokenFormat(t *testing.T) {
	tok, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if !strings.HasPrefix(tok, "mood-") || len(tok) != len("mood-")+32 {
		t.Fatalf("unexpected token %q", tok)
	}
	other, _ := NewToken()
	if other == tok {
		t.Fatalf("tokens should differ")
	}
}

func TestParseRecurrence(t *testing.T) {
	if r, ok := ParseRecurrence(" Weekly "); !ok || r != RecurrenceWeekly {
		t.Fatalf("expected weekly, got %q ok=%v", r, ok)
	}
	if _, ok := ParseRecurrence("hourly"); ok {
		t.Fatalf("hourly should be rejected")
	}
}

func TestRecurrenceDue(t *testing.T) {
	monday := time.Date(2025, 10, 13, 8, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	first := time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		r    Recurrence
		at   time.Time
		want bool
	}{
		{RecurrenceDaily, tuesday, true},
		{RecurrenceWeekly, monday, true},
		{RecurrenceWeekly, tuesday, false},
		{RecurrenceMonthly, first, true},
		{RecurrenceMonthly, monday, false},
		{Recurrence(""), tuesday, true},
	}
	for _, c := range cases {
		if got := c.r.Due(c.at); got != c.want {
			t.Fatalf("%q.Due(%s)=%v want %v", c.r, c.at.Weekday(), got, c.want)
		}
	}
}
