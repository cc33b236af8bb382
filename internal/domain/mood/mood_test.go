package mood

import (
	"testing"
	"time"
)

func TestLabel(t *testing.T) {
	want := []string{"Terrible", "Bad", "Meh", "Okay", "Good", "Excellent"}
	for i, w := range want {
		if got := Label(i); got != w {
			t.Fatalf("Label(%d)=%q want %q", i, got, w)
		}
	}
	if Label(6) != "Unknown" || Label(-1) != "Unknown" {
		t.Fatalf("out-of-range labels should be Unknown")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5) != 5 || Clamp(0) != 0 {
		t.Fatalf("in-range scores must pass through")
	}
	if Clamp(7) != DefaultScore || Clamp(-2) != DefaultScore {
		t.Fatalf("out-of-range scores must default")
	}
}

func TestEntryState(t *testing.T) {
	e := &MoodEntry{}
	if e.State() != EntryPending {
		t.Fatalf("new entry should be pending")
	}
	now := time.Now()
	e.RespondedAt = &now
	if e.State() != EntryAnswered {
		t.Fatalf("responded entry should be answered")
	}
}
