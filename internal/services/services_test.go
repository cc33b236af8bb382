package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/desplega-ai/mood/internal/data/repos"
	"github.com/desplega-ai/mood/internal/data/repos/testutil"
	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/platform/apierr"
	"github.com/desplega-ai/mood/internal/platform/ctxutil"
	"github.com/desplega-ai/mood/internal/platform/sendgrid"
	"github.com/desplega-ai/mood/internal/platform/smtp"
)

type recordingMailer struct {
	sent []Email
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, e Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, e)
	return nil
}

func (m *recordingMailer) Provider() string { return "recording" }

func asTenant(key *types.APIKey) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{APIKeyID: key.ID, CompanyName: key.CompanyName})
}

func statusOf(err error) int {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

func newAccess(t *testing.T, db *gorm.DB, mailer Mailer) AccessService {
	t.Helper()
	log := testutil.Logger(t)
	return NewAccessService(db, log, repos.NewAPIKeyRepo(db, log), repos.NewFounderRepo(db, log), mailer, "https://mood.example.com")
}

func TestRequestAccessCreatesTenantAndMailsToken(t *testing.T) {
	db := testutil.DB(t)
	mailer := &recordingMailer{}
	svc := newAccess(t, db, mailer)
	email := "Founder-" + uuid.NewString()[:8] + "@Startup.io"

	key, err := svc.RequestAccess(context.Background(), AccessRequest{Name: "Taras", Email: email, CompanyName: "Startup"})
	if err != nil {
		t.Fatalf("RequestAccess: %v", err)
	}
	if !strings.HasPrefix(key.Token, "mood-") || len(key.Token) != len("mood-")+32 {
		t.Fatalf("unexpected token %q", key.Token)
	}
	if len(mailer.sent) != 1 || !strings.Contains(mailer.sent[0].Text, "API Key: "+key.Token) {
		t.Fatalf("welcome email missing token: %+v", mailer.sent)
	}
	if mailer.sent[0].To != strings.ToLower(email) {
		t.Fatalf("recipient not normalized: %q", mailer.sent[0].To)
	}

	sum, err := svc.Validate(context.Background(), key.Token)
	if err != nil || sum.FoundersCount != 1 || sum.APIKey.CompanyName != "Startup" {
		t.Fatalf("Validate: %+v err=%v", sum, err)
	}

	_, err = svc.RequestAccess(context.Background(), AccessRequest{Name: "Other", Email: email, CompanyName: "Dup"})
	if statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %v", err)
	}
}

func TestRequestAccessValidation(t *testing.T) {
	svc := newAccess(t, testutil.DB(t), &recordingMailer{})
	cases := []AccessRequest{
		{Name: "", Email: "a@b.io", CompanyName: "x"},
		{Name: "a", Email: "not-an-email", CompanyName: "x"},
		{Name: "a", Email: "a@b", CompanyName: "x"},
	}
	for _, c := range cases {
		if _, err := svc.RequestAccess(context.Background(), c); statusOf(err) != http.StatusBadRequest {
			t.Fatalf("expected 400 for %+v, got %v", c, err)
		}
	}
}

func TestRequestAccessRollsBackWhenMailFails(t *testing.T) {
	db := testutil.DB(t)
	svc := newAccess(t, db, &recordingMailer{err: errors.New("smtp down")})
	email := "rollback-" + uuid.NewString()[:8] + "@startup.io"

	_, err := svc.RequestAccess(context.Background(), AccessRequest{Name: "A", Email: email, CompanyName: "C"})
	if statusOf(err) != http.StatusBadGateway {
		t.Fatalf("expected 502, got %v", err)
	}
	var n int64
	db.Model(&types.Founder{}).Where("email = ?", email).Count(&n)
	if n != 0 {
		t.Fatalf("founder must be rolled back")
	}
}

func TestAuthenticateRejectsUnknownToken(t *testing.T) {
	svc := newAccess(t, testutil.DB(t), &recordingMailer{})
	if _, err := svc.Authenticate(context.Background(), "mood-nope"); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), " "); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 for empty token, got %v", err)
	}
}

func TestRecurrenceSettings(t *testing.T) {
	db := testutil.DB(t)
	svc := newAccess(t, db, &recordingMailer{})
	key := testutil.SeedAPIKey(t, db, types.RecurrenceDaily)
	ctx := asTenant(key)

	if r, err := svc.GetRecurrence(ctx); err != nil || r != types.RecurrenceDaily {
		t.Fatalf("GetRecurrence: %v %v", r, err)
	}
	updated, err := svc.SetRecurrence(ctx, "Weekly")
	if err != nil || updated.Recurrence != types.RecurrenceWeekly {
		t.Fatalf("SetRecurrence: %+v %v", updated, err)
	}
	if _, err := svc.SetRecurrence(ctx, "hourly"); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if _, err := svc.GetRecurrence(context.Background()); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 without tenant, got %v", err)
	}
}

func TestFounderServiceScopesToTenant(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewFounderService(db, log, repos.NewFounderRepo(db, log))
	mine := testutil.SeedAPIKey(t, db, types.RecurrenceDaily)
	theirs := testutil.SeedAPIKey(t, db, types.RecurrenceDaily)
	foreign := testutil.SeedFounder(t, db, theirs.ID, "zed")
	ctx := asTenant(mine)

	email := "ana-" + uuid.NewString()[:8] + "@acme.io"
	f, err := svc.Create(ctx, "Ana", strings.ToUpper(email))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.Email != email || f.APIKeyID != mine.ID {
		t.Fatalf("unexpected founder %+v", f)
	}
	if _, err := svc.Create(ctx, "Ana 2", email); statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	if _, err := svc.Create(ctx, "Ana 3", foreign.Email); statusOf(err) != http.StatusConflict {
		t.Fatalf("emails are unique across tenants, got %v", err)
	}

	list, err := svc.List(ctx)
	if err != nil || len(list) != 1 || list[0].ID != f.ID {
		t.Fatalf("List: %+v %v", list, err)
	}

	name := "Ana Ruiz"
	updated, err := svc.Update(ctx, f.ID, FounderPatch{Name: &name})
	if err != nil || updated.Name != name {
		t.Fatalf("Update: %+v %v", updated, err)
	}
	if _, err := svc.Update(ctx, foreign.ID, FounderPatch{Name: &name}); statusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign founder, got %v", err)
	}
	if _, err := svc.Update(ctx, f.ID, FounderPatch{Email: &foreign.Email}); statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409 on email clash, got %v", err)
	}
	if err := svc.Delete(ctx, foreign.ID); statusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404 deleting foreign founder, got %v", err)
	}
	if err := svc.Delete(ctx, f.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestPeriodWindow(t *testing.T) {
	// Wednesday 2026-10-14.
	now := time.Date(2026, 10, 14, 18, 30, 0, 0, time.UTC)
	cases := []struct {
		p        Period
		from, to time.Time
	}{
		{PeriodDaily, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)},
		{PeriodWeekly, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)},
		{PeriodMonthly, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		from, to := c.p.Window(now)
		if from == nil || to == nil || !from.Equal(c.from) || !to.Equal(c.to) {
			t.Fatalf("%s: got %v..%v want %v..%v", c.p, from, to, c.from, c.to)
		}
	}
	sunday := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	if from, _ := PeriodWeekly.Window(sunday); !from.Equal(time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("sunday belongs to the week starting monday, got %v", from)
	}
	if from, to := PeriodAll.Window(now); from != nil || to != nil {
		t.Fatalf("all has no bounds")
	}
	if _, ok := ParsePeriod("yearly"); ok {
		t.Fatalf("yearly is not a period")
	}
}

func TestMoodQueryListsTenantEntriesWithLabels(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	entries := repos.NewMoodEntryRepo(db, log)
	svc := NewMoodQueryService(db, log, entries)
	key := testutil.SeedAPIKey(t, db, types.RecurrenceDaily)
	f := testutil.SeedFounder(t, db, key.ID, "ana")
	e := testutil.SeedEntry(t, db, f.ID, types.VariantDual, time.Now())
	y, d := 1, 4
	db.Model(&types.MoodEntry{}).Where("id = ?", e.ID).Updates(map[string]interface{}{"mood_yesterday": y, "mood_today": d, "responded_at": time.Now().UTC()})

	other := testutil.SeedAPIKey(t, db, types.RecurrenceDaily)
	of := testutil.SeedFounder(t, db, other.ID, "zed")
	testutil.SeedEntry(t, db, of.ID, types.VariantDual, time.Now())

	views, period, err := svc.List(asTenant(key), MoodQuery{Period: "daily"})
	if err != nil || period != PeriodDaily {
		t.Fatalf("List: %v %v", period, err)
	}
	if len(views) != 1 || views[0].ID != e.ID {
		t.Fatalf("expected only own entry, got %+v", views)
	}
	v := views[0]
	if v.MoodLabelYesterday != "Bad" || v.MoodLabelToday != "Good" || v.Status != "answered" || v.Founder == nil || v.Founder.Name != "ana" {
		t.Fatalf("unexpected view %+v", v)
	}
	if _, _, err := svc.List(asTenant(key), MoodQuery{FounderID: "nope"}); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad founder id, got %v", err)
	}
}

type fakeSMTP struct{ got smtp.Message }

func (f *fakeSMTP) Send(ctx context.Context, msg smtp.Message) error {
	f.got = msg
	return nil
}

type fakeSendGrid struct{ got sendgrid.Message }

func (f *fakeSendGrid) Send(ctx context.Context, msg sendgrid.Message) (*sendgrid.Receipt, error) {
	f.got = msg
	return &sendgrid.Receipt{StatusCode: http.StatusAccepted, MessageID: "abc"}, nil
}

func TestMailerAdapters(t *testing.T) {
	log := testutil.Logger(t)
	e := Email{To: "ana@acme.io", ToName: "Ana", Subject: "[MoodCheck-1] How are you doing?", Text: "hi"}

	s := &fakeSMTP{}
	if err := NewSMTPMailer(log, s).Send(context.Background(), e); err != nil {
		t.Fatalf("smtp: %v", err)
	}
	if s.got.To != e.To || s.got.Subject != e.Subject || s.got.Text != e.Text {
		t.Fatalf("smtp message: %+v", s.got)
	}

	sg := &fakeSendGrid{}
	m := NewSendGridMailer(log, sg, "mood@example.com", "Mood Tracker")
	if err := m.Send(context.Background(), e); err != nil {
		t.Fatalf("sendgrid: %v", err)
	}
	if sg.got.From.Email != "mood@example.com" || sg.got.To.Email != e.To || sg.got.To.Name != "Ana" || sg.got.ReplyTo != "" {
		t.Fatalf("sendgrid request: %+v", sg.got)
	}
	if err := m.Send(context.Background(), Email{Subject: "x"}); err == nil {
		t.Fatalf("missing recipient must fail")
	}
}
