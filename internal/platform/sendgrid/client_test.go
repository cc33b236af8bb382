package sendgrid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/desplega-ai/mood/internal/platform/logger"
)

func newTestClient(t *testing.T, url string, retries int) Client {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	c, err := New(log, Config{APIKey: "SG.test", BaseURL: url, DefaultFromEmail: "bot@example.com", MaxRetries: retries})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestSendBuildsWireRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got payload
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		if got.From.Email != "bot@example.com" {
			t.Errorf("default from not applied: %+v", got.From)
		}
		if got.Subject != "[MoodCheck-abc] How are you doing?" {
			t.Errorf("subject=%q", got.Subject)
		}
		if len(got.Personalizations) != 1 || got.Personalizations[0].To[0].Email != "ana@acme.io" {
			t.Errorf("personalizations=%+v", got.Personalizations)
		}
		if got.ReplyTo == nil || got.ReplyTo.Email != "replies@example.com" {
			t.Errorf("reply_to=%+v", got.ReplyTo)
		}
		if len(got.Content) != 1 || got.Content[0].Type != "text/plain" {
			t.Errorf("content=%+v", got.Content)
		}
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv.URL, 0).Send(context.Background(), Message{
		To:      Address{Email: "ana@acme.io"},
		ReplyTo: "replies@example.com",
		Subject: "[MoodCheck-abc] How are you doing?",
		Text:    "hi",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.MessageID != "msg-1" || res.StatusCode != http.StatusAccepted {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad from"}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 3).Send(context.Background(), Message{
		To: Address{Email: "a@b.c"}, Subject: "s", Text: "t",
	})
	if err == nil || err.Error() != "sendgrid http 400: bad from" {
		t.Fatalf("unexpected err %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}

func TestSendValidates(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0", 0)
	if _, err := c.Send(context.Background(), Message{Subject: "s", Text: "t"}); err == nil {
		t.Fatalf("expected To error")
	}
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv.URL, 2).Send(context.Background(), Message{
		To: Address{Email: "a@b.c"}, Subject: "s", Text: "t",
	}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected a retry, got %d calls", calls)
	}
}
