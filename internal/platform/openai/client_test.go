package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desplega-ai/mood/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

const okBody = `{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"4"}]}]}`

func TestGenerateTextParsesOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req responsesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Input) != 2 || req.Input[0].Role != "system" {
			t.Errorf("unexpected input %+v", req.Input)
		}
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	c, err := New(testLogger(t), Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "m"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := c.GenerateText(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != "4" {
		t.Fatalf("expected 4, got %q", out)
	}
}

func TestGenerateTextNoRetryWhenDisabled(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := New(testLogger(t), Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: 0, Timeout: time.Second})
	if _, err := c.GenerateText(context.Background(), "s", "u"); err == nil {
		t.Fatalf("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly one call, got %d", n)
	}
}

func TestGenerateTextDropsRejectedTemperature(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		raw, _ := io.ReadAll(r.Body)
		if strings.Contains(string(raw), "temperature") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"Unsupported parameter: 'temperature'"}}`)
			return
		}
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	temp := 0.2
	c, _ := New(testLogger(t), Config{APIKey: "k", BaseURL: srv.URL, Temperature: &temp})
	out, err := c.GenerateText(context.Background(), "s", "u")
	if err != nil || out != "4" {
		t.Fatalf("unexpected result %q err=%v", out, err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected 2 calls, got %d", n)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(testLogger(t), Config{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}
