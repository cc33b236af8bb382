package imap

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/emersion/go-imap/backend/memory"
	"github.com/emersion/go-imap/server"

	"github.com/desplega-ai/mood/internal/platform/logger"
)

func startServer(t *testing.T, raws ...string) Config {
	t.Helper()
	be := memory.New()
	u, err := be.Login(nil, "username", "password")
	if err != nil {
		t.Fatalf("backend login: %v", err)
	}
	mbox, err := u.GetMailbox("INBOX")
	if err != nil {
		t.Fatalf("get mailbox: %v", err)
	}
	for _, raw := range raws {
		if err := mbox.CreateMessage([]string{}, time.Now(), bytes.NewBufferString(raw)); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := server.New(be)
	s.AllowInsecureAuth = true
	go func() { _ = s.Serve(l) }()
	t.Cleanup(func() { _ = s.Close() })

	host, port, _ := net.SplitHostPort(l.Addr().String())
	p, _ := strconv.Atoi(port)
	return Config{
		Host:     host,
		Port:     p,
		Username: "username",
		Password: "password",
		Folder:   "INBOX",
		TLS:      false,
		Timeout:  5 * time.Second,
	}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestPollFiltersBySubjectAndPeeks(t *testing.T) {
	cfg := startServer(t, plainReply)
	c := New(testLogger(t), cfg)

	var got []Message
	err := c.Poll(context.Background(), Query{Since: time.Now().Add(-24 * time.Hour), Subject: "MoodCheck"},
		func(ctx context.Context, msg Message) (bool, error) {
			got = append(got, msg)
			return true, nil
		})
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only the MoodCheck message, got %d", len(got))
	}
	if got[0].From != "Ana@Acme.io" {
		t.Fatalf("from=%q", got[0].From)
	}

	// Mark-seen is disabled, so the reply stays unseen.
	report, err := c.Unseen(context.Background())
	if err != nil {
		t.Fatalf("Unseen: %v", err)
	}
	found := false
	for _, e := range report.Emails {
		if e.UID == got[0].UID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected uid %d to remain unseen", got[0].UID)
	}
}

func TestPollMarksSeenOnlyWhenAsked(t *testing.T) {
	cfg := startServer(t, plainReply)
	cfg.MarkSeen = true
	c := New(testLogger(t), cfg)

	var uid uint32
	err := c.Poll(context.Background(), Query{Subject: "MoodCheck"}, func(ctx context.Context, msg Message) (bool, error) {
		uid = msg.UID
		return true, nil
	})
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	report, err := c.Unseen(context.Background())
	if err != nil {
		t.Fatalf("Unseen: %v", err)
	}
	for _, e := range report.Emails {
		if e.UID == uid {
			t.Fatalf("uid %d should be seen after poll", uid)
		}
	}
}

func TestPollLoginFailureIsOpError(t *testing.T) {
	cfg := startServer(t)
	cfg.Password = "wrong"
	err := New(testLogger(t), cfg).Poll(context.Background(), Query{}, func(context.Context, Message) (bool, error) {
		return false, nil
	})
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Op != "login" {
		t.Fatalf("expected login OpError, got %v", err)
	}
}

func TestListFolders(t *testing.T) {
	cfg := startServer(t)
	folders, err := New(testLogger(t), cfg).ListFolders(context.Background())
	if err != nil {
		t.Fatalf("ListFolders: %v", err)
	}
	found := false
	for _, f := range folders {
		if f.Name == "INBOX" {
			found = true
		}
	}
	if !found {
		t.Fatalf("INBOX missing from %+v", folders)
	}
}
