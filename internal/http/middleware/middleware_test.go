package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/desplega-ai/mood/internal/data/repos/testutil"
	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/platform/apierr"
	"github.com/desplega-ai/mood/internal/platform/ctxutil"
	"github.com/desplega-ai/mood/internal/services"
)

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		origins []string
		origin  string
		allowed bool
	}{
		{nil, "http://localhost:3002", true},
		{[]string{"https://mood.example.com"}, "https://mood.example.com", true},
		{[]string{"https://mood.example.com"}, "https://evil.example.com", false},
	}
	for _, tc := range cases {
		t.Run(tc.origin, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tc.origins))
			r.OPTIONS("/api/founders", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodOptions, "/api/founders", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tc.allowed && got != tc.origin {
				t.Fatalf("unexpected allow-origin header: got=%q want=%q", got, tc.origin)
			}
			if !tc.allowed && got != "" {
				t.Fatalf("origin %q must not be allowed, got %q", tc.origin, got)
			}
		})
	}
}

func TestRequireCronSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		secret string
		header string
		want   int
	}{
		{"s3cret", "Bearer s3cret", http.StatusOK},
		{"s3cret", "bearer s3cret", http.StatusOK},
		{"s3cret", "Bearer wrong", http.StatusUnauthorized},
		{"s3cret", "", http.StatusUnauthorized},
		{"", "Bearer ", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/cron", RequireCronSecret(tc.secret), func(c *gin.Context) { c.Status(http.StatusOK) })
		req := httptest.NewRequest(http.MethodGet, "/cron", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("secret=%q header=%q: got %d want %d", tc.secret, tc.header, rec.Code, tc.want)
		}
	}
}

type stubAccess struct {
	services.AccessService
	key *types.APIKey
}

func (s stubAccess) Authenticate(ctx context.Context, token string) (*types.APIKey, error) {
	if s.key != nil && token == s.key.Token {
		return s.key, nil
	}
	return nil, apierr.Unauthorized("invalid_token", errors.New("invalid token"))
}

func TestRequireAPIKeySetsRequestData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	key := &types.APIKey{ID: uuid.New(), Token: "mood-abc", CompanyName: "Acme"}
	am := NewAuthMiddleware(testutil.Logger(t), stubAccess{key: key})

	r := gin.New()
	r.GET("/me", am.RequireAPIKey(), func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || rd.APIKeyID != key.ID {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	for header, want := range map[string]int{
		"Bearer mood-abc":  http.StatusOK,
		"Bearer mood-nope": http.StatusUnauthorized,
		"":                 http.StatusUnauthorized,
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("header %q: got %d want %d", header, rec.Code, want)
		}
	}
}

func TestAttachTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") != "req-1" || seen == nil || seen.RequestID != "req-1" || seen.TraceID == "" {
		t.Fatalf("trace data not propagated: %+v headers=%v", seen, rec.Header())
	}
}
