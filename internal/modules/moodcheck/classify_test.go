package moodcheck

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/desplega-ai/mood/internal/data/repos/testutil"
	types "github.com/desplega-ai/mood/internal/domain"
)

func TestParseSingle(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"4", 4, true},
		{" 0\n", 0, true},
		{"Score: 5", 5, true},
		{"7", 3, false},
		{"-1", 3, false},
		{"not sure", 3, false},
		{"", 3, false},
	}
	for _, tc := range cases {
		got, ok := ParseSingle(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseSingle(%q) = %d,%v want %d,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseDual(t *testing.T) {
	cases := []struct {
		in   string
		y, d int
		ok   bool
	}{
		{"2,4", 2, 4, true},
		{"1 , 5", 1, 5, true},
		{"yesterday/today: 0,3", 0, 3, true},
		{"9,4", 3, 4, false},
		{"4", 3, 3, false},
		{"not sure", 3, 3, false},
	}
	for _, tc := range cases {
		y, d, ok := ParseDual(tc.in)
		if y != tc.y || d != tc.d || ok != tc.ok {
			t.Fatalf("ParseDual(%q) = %d,%d,%v want %d,%d,%v", tc.in, y, d, ok, tc.y, tc.d, tc.ok)
		}
	}
}

func TestClassifierTimeoutDegrades(t *testing.T) {
	llm := &blockingLLM{}
	c := NewClassifier(testutil.Logger(t), llm, 20*time.Millisecond)
	got := c.Classify(context.Background(), types.VariantDual, "long day")
	if !got.Degraded || got.Scores.Yesterday != 3 || got.Scores.Today != 3 {
		t.Fatalf("expected degraded defaults, got %+v", got)
	}
	if got.Error == "" {
		t.Fatalf("expected error recorded")
	}
}

func TestClassifierEmptyReplySkipsModel(t *testing.T) {
	llm := &fakeLLM{out: "5"}
	c := NewClassifier(testutil.Logger(t), llm, time.Second)
	got := c.Classify(context.Background(), types.VariantSingle, "   ")
	if llm.calls != 0 || got.Scores.Mood != 3 || !got.Degraded {
		t.Fatalf("unexpected classification %+v calls=%d", got, llm.calls)
	}
}

type blockingLLM struct{}

func (blockingLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (blockingLLM) Model() string { return "blocking" }

func TestTokenPattern(t *testing.T) {
	id := uuid.New()
	m := &Matcher{Marker: "MoodCheck", token: TokenPattern("MoodCheck")}
	for _, subject := range []string{
		SubjectFor("MoodCheck", id, "How are you doing?"),
		"Re: " + SubjectFor("MoodCheck", id, "How are you doing?"),
		"AW: RE: Fwd: " + SubjectFor("MoodCheck", id, "x"),
	} {
		got, ok := m.ExtractToken(subject)
		if !ok || got != id.String() {
			t.Fatalf("ExtractToken(%q) = %q,%v", subject, got, ok)
		}
	}
	if got, ok := m.ExtractToken("Re: [MoodCheck- abc]"); !ok || got != " abc" {
		t.Fatalf("token with spaces: %q,%v", got, ok)
	}
	if _, ok := m.ExtractToken("Re: MoodCheck how are you"); ok {
		t.Fatalf("bare marker must not yield a token")
	}
	if !m.HasMarker("Re: MoodCheck how are you") {
		t.Fatalf("marker literal not detected")
	}

	custom := TokenPattern("Pulse.v2")
	if custom.MatchString("[PulseXv2-abc]") {
		t.Fatalf("marker must be matched literally")
	}
}

func TestSenderMatches(t *testing.T) {
	if !SenderMatches(" ana@acme.io ", "ana@acme.io") {
		t.Fatalf("surrounding whitespace must not matter")
	}
	if SenderMatches("Ana@Acme.IO", "ana@acme.io") {
		t.Fatalf("addresses differing in case must not match")
	}
	if SenderMatches("", "") {
		t.Fatalf("empty sender never matches")
	}
	if SenderMatches("ana@acme.io.evil.com", "ana@acme.io") {
		t.Fatalf("different address matched")
	}
}

func TestLocalLock(t *testing.T) {
	l := NewLocalLock()
	release, ok, err := l.TryAcquire(context.Background(), "poll", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := l.TryAcquire(context.Background(), "poll", time.Minute); ok {
		t.Fatalf("second acquire must fail while held")
	}
	release()
	release()
	if _, ok, _ := l.TryAcquire(context.Background(), "poll", time.Minute); !ok {
		t.Fatalf("acquire after release failed")
	}

	expiring := NewLocalLock()
	_, _, _ = expiring.TryAcquire(context.Background(), "poll", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := expiring.TryAcquire(context.Background(), "poll", time.Minute); !ok {
		t.Fatalf("expired lock should be reclaimable")
	}
}

func TestPromptBodySingle(t *testing.T) {
	body := PromptBody("Ana", types.VariantSingle, "", "")
	want := "Hi Ana,\n\nHow are you feeling today?\n\nJust reply to this email with your thoughts."
	if body != want {
		t.Fatalf("body:\n%q\nwant\n%q", body, want)
	}
}
