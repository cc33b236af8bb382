package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/desplega-ai/mood/internal/platform/ctxutil"
	"github.com/desplega-ai/mood/internal/platform/envutil"
	"github.com/desplega-ai/mood/internal/platform/httpx"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

const sendPath = "/v3/mail/send"

type Client interface {
	Send(ctx context.Context, msg Message) (*Receipt, error)
}

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	DefaultFromName  string
	Timeout          time.Duration
	MaxRetries       int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:           envutil.String("SENDGRID_API_KEY", ""),
		BaseURL:          envutil.String("SENDGRID_BASE_URL", "https://api.sendgrid.com"),
		DefaultFromEmail: envutil.String("SENDGRID_FROM_EMAIL", ""),
		DefaultFromName:  envutil.String("SENDGRID_FROM_NAME", "Mood Tracker"),
		Timeout:          envutil.Seconds("SENDGRID_TIMEOUT_SECONDS", 30*time.Second),
		MaxRetries:       envutil.Int("SENDGRID_MAX_RETRIES", 3),
	}
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing SENDGRID_API_KEY")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:  log.With("client", "SendGridClient"),
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log  *logger.Logger
	cfg  Config
	http *http.Client
}

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Message is a plain-text mail to one recipient. An empty From uses the
// configured default sender.
type Message struct {
	From    Address
	To      Address
	ReplyTo string
	Subject string
	Text    string
}

type Receipt struct {
	StatusCode int
	MessageID  string
}

type payload struct {
	Personalizations []personalization `json:"personalizations"`
	From             Address           `json:"from"`
	ReplyTo          *Address          `json:"reply_to,omitempty"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []Address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (c *client) payloadFor(msg Message) (payload, error) {
	from := msg.From
	if strings.TrimSpace(from.Email) == "" {
		from = Address{Email: c.cfg.DefaultFromEmail, Name: c.cfg.DefaultFromName}
	}
	from.Email = strings.TrimSpace(from.Email)
	to := Address{Email: strings.TrimSpace(msg.To.Email), Name: msg.To.Name}
	subject := strings.TrimSpace(msg.Subject)

	switch {
	case from.Email == "":
		return payload{}, fmt.Errorf("sendgrid: sender required (set SENDGRID_FROM_EMAIL)")
	case to.Email == "":
		return payload{}, fmt.Errorf("sendgrid: recipient required")
	case subject == "":
		return payload{}, fmt.Errorf("sendgrid: subject required")
	case strings.TrimSpace(msg.Text) == "":
		return payload{}, fmt.Errorf("sendgrid: text body required")
	}

	p := payload{
		Personalizations: []personalization{{To: []Address{to}}},
		From:             from,
		Subject:          subject,
		Content:          []content{{Type: "text/plain", Value: msg.Text}},
	}
	if r := strings.TrimSpace(msg.ReplyTo); r != "" {
		p.ReplyTo = &Address{Email: r}
	}
	return p, nil
}

func (c *client) Send(ctx context.Context, msg Message) (*Receipt, error) {
	p, err := c.payloadFor(msg)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	ctx = ctxutil.Default(ctx)
	for attempt := 0; ; attempt++ {
		resp, err := c.post(ctx, body)
		if err == nil {
			return &Receipt{
				StatusCode: resp.StatusCode,
				MessageID:  strings.TrimSpace(resp.Header.Get("X-Message-Id")),
			}, nil
		}
		if attempt >= c.cfg.MaxRetries || !httpx.IsRetryableError(err) {
			return nil, err
		}
		wait := httpx.JitterSleep(httpx.RetryAfterDuration(resp, httpx.Backoff(attempt, time.Second, 10*time.Second), 10*time.Second))
		c.log.Warn("SendGrid send retrying", "attempt", attempt+1, "sleep", wait.String(), "error", err)
		if err := httpx.Sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// HTTPError is a non-2xx answer from the mail send endpoint.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Message)
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

func (c *client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	if readErr != nil {
		return resp, readErr
	}
	return resp, &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
}

// errorMessage prefers the first entry of SendGrid's {"errors":[{"message"}]} body.
func errorMessage(raw []byte) string {
	var parsed struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(raw, &parsed) == nil && len(parsed.Errors) > 0 && parsed.Errors[0].Message != "" {
		return parsed.Errors[0].Message
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "<empty body>"
	}
	if len(msg) > 500 {
		msg = msg[:500] + "..."
	}
	return msg
}
