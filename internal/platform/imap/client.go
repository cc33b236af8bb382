package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"time"

	goimap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/desplega-ai/mood/internal/platform/logger"
)

// OpError wraps a failed mailbox command with the step that failed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return fmt.Sprintf("imap %s: %v", e.Op, e.Err) }
func (e *OpError) Unwrap() error { return e.Err }

// Query selects the messages of one poll.
type Query struct {
	Since   time.Time
	Subject string
}

// Handler receives each message in fetch order. Returning seen=true queues
// the message for \Seen when mark-seen is enabled.
type Handler func(ctx context.Context, msg Message) (seen bool, err error)

type Client struct {
	log *logger.Logger
	cfg Config
}

func New(log *logger.Logger, cfg Config) *Client {
	return &Client{log: log.With("client", "IMAPClient"), cfg: cfg.withDefaults()}
}

func (c *Client) Config() Config { return c.cfg }

type session struct {
	c      *client.Client
	folder string
	stop   func() bool
}

func (c *Client) open(ctx context.Context, readOnly bool) (*session, *goimap.MailboxStatus, error) {
	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	dialer := &net.Dialer{Timeout: c.cfg.Timeout}

	var (
		ic  *client.Client
		err error
	)
	if c.cfg.TLS {
		ic, err = client.DialWithDialerTLS(dialer, addr, &tls.Config{ServerName: c.cfg.Host})
	} else {
		ic, err = client.DialWithDialer(dialer, addr)
	}
	if err != nil {
		return nil, nil, &OpError{Op: "dial", Err: err}
	}
	ic.Timeout = c.cfg.Timeout
	// Terminate the connection when the caller gives up.
	stop := context.AfterFunc(ctx, func() { _ = ic.Terminate() })

	s := &session{c: ic, folder: c.cfg.Folder, stop: stop}
	if err := ic.Login(c.cfg.Username, c.cfg.Password); err != nil {
		s.close()
		return nil, nil, &OpError{Op: "login", Err: err}
	}
	status, err := ic.Select(c.cfg.Folder, readOnly)
	if err != nil {
		s.close()
		return nil, nil, &OpError{Op: "select", Err: err}
	}
	return s, status, nil
}

func (s *session) close() {
	if s == nil || s.c == nil {
		return
	}
	s.stop()
	_ = s.c.Logout()
}

// Poll runs one read pass: search, fetch bodies with BODY.PEEK[] in batches
// and hand each message to fn. Messages that fail to parse are still passed
// with ParseErr set. Mailbox failures are returned as *OpError.
func (c *Client) Poll(ctx context.Context, q Query, fn Handler) error {
	s, _, err := c.open(ctx, !c.cfg.MarkSeen)
	if err != nil {
		return err
	}
	defer s.close()

	criteria := goimap.NewSearchCriteria()
	if !q.Since.IsZero() {
		criteria.Since = q.Since
	}
	if q.Subject != "" {
		criteria.Header.Add("Subject", q.Subject)
	}
	uids, err := s.c.UidSearch(criteria)
	if err != nil {
		return &OpError{Op: "search", Err: err}
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	c.log.Info("IMAP search complete", "folder", s.folder, "matches", len(uids))

	seen := []uint32{}
	for start := 0; start < len(uids); start += c.cfg.FetchBatch {
		end := start + c.cfg.FetchBatch
		if end > len(uids) {
			end = len(uids)
		}
		batch, err := s.fetchBodies(uids[start:end])
		if err != nil {
			return err
		}
		for _, msg := range batch {
			mark, err := fn(ctx, msg)
			if err != nil {
				return err
			}
			if mark {
				seen = append(seen, msg.UID)
			}
		}
	}

	if c.cfg.MarkSeen && len(seen) > 0 {
		if err := s.markSeen(seen); err != nil {
			// Seen flags are advisory; the poll outcome stands.
			c.log.Warn("IMAP mark seen failed", "count", len(seen), "error", err.Error())
		}
	}
	return nil
}

func (s *session) fetchBodies(uids []uint32) ([]Message, error) {
	seqset := new(goimap.SeqSet)
	seqset.AddNum(uids...)
	section := &goimap.BodySectionName{Peek: true}
	items := []goimap.FetchItem{goimap.FetchUid, section.FetchItem()}

	ch := make(chan *goimap.Message, len(uids))
	done := make(chan error, 1)
	go func() { done <- s.c.UidFetch(seqset, items, ch) }()

	out := make([]Message, 0, len(uids))
	for m := range ch {
		body := m.GetBody(section)
		if body == nil {
			out = append(out, Message{UID: m.Uid, ParseErr: fmt.Errorf("empty body")})
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			out = append(out, Message{UID: m.Uid, ParseErr: fmt.Errorf("read body: %w", err)})
			continue
		}
		out = append(out, ParseMessage(m.Uid, raw))
	}
	if err := <-done; err != nil {
		return nil, &OpError{Op: "fetch", Err: err}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (s *session) markSeen(uids []uint32) error {
	seqset := new(goimap.SeqSet)
	seqset.AddNum(uids...)
	flags := []interface{}{goimap.SeenFlag}
	if err := s.c.UidStore(seqset, goimap.FormatFlagsOp(goimap.AddFlags, true), flags, nil); err != nil {
		return &OpError{Op: "store", Err: err}
	}
	return nil
}

type Folder struct {
	Name       string   `json:"name"`
	Delimiter  string   `json:"delimiter"`
	Attributes []string `json:"attributes"`
}

func (c *Client) ListFolders(ctx context.Context) ([]Folder, error) {
	s, _, err := c.open(ctx, true)
	if err != nil {
		return nil, err
	}
	defer s.close()

	ch := make(chan *goimap.MailboxInfo, 16)
	done := make(chan error, 1)
	go func() { done <- s.c.List("", "*", ch) }()

	out := []Folder{}
	for mb := range ch {
		out = append(out, Folder{Name: mb.Name, Delimiter: mb.Delimiter, Attributes: mb.Attributes})
	}
	if err := <-done; err != nil {
		return nil, &OpError{Op: "list", Err: err}
	}
	return out, nil
}

type HeaderSummary struct {
	UID     uint32    `json:"uid"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Date    time.Time `json:"date"`
}

type UnseenReport struct {
	Total  uint32          `json:"total"`
	Unseen uint32          `json:"unseen"`
	Emails []HeaderSummary `json:"emails"`
}

// Unseen lists envelope data of unseen messages without touching flags.
func (c *Client) Unseen(ctx context.Context) (*UnseenReport, error) {
	s, status, err := c.open(ctx, true)
	if err != nil {
		return nil, err
	}
	defer s.close()

	criteria := goimap.NewSearchCriteria()
	criteria.WithoutFlags = []string{goimap.SeenFlag}
	uids, err := s.c.UidSearch(criteria)
	if err != nil {
		return nil, &OpError{Op: "search", Err: err}
	}
	report := &UnseenReport{Total: status.Messages, Unseen: uint32(len(uids)), Emails: []HeaderSummary{}}
	if len(uids) == 0 {
		return report, nil
	}

	seqset := new(goimap.SeqSet)
	seqset.AddNum(uids...)
	ch := make(chan *goimap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- s.c.UidFetch(seqset, []goimap.FetchItem{goimap.FetchUid, goimap.FetchEnvelope}, ch)
	}()
	for m := range ch {
		hs := HeaderSummary{UID: m.Uid}
		if env := m.Envelope; env != nil {
			hs.Subject = env.Subject
			hs.Date = env.Date
			if len(env.From) > 0 && env.From[0] != nil {
				hs.From = env.From[0].Address()
			}
		}
		report.Emails = append(report.Emails, hs)
	}
	if err := <-done; err != nil {
		return nil, &OpError{Op: "fetch", Err: err}
	}
	return report, nil
}
