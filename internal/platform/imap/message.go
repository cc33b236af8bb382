package imap

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Message is a parsed inbound mail. ParseErr is set when the MIME body
// could not be decoded; the remaining fields are best effort in that case.
type Message struct {
	UID      uint32
	From     string
	FromName string
	Subject  string
	Date     time.Time
	Text     string
	HTML     string
	ParseErr error
}

// Body returns the plain-text part, falling back to the HTML part.
func (m Message) Body() string {
	if strings.TrimSpace(m.Text) != "" {
		return m.Text
	}
	return m.HTML
}

// ParseMessage decodes a raw RFC 5322 message.
func ParseMessage(uid uint32, raw []byte) Message {
	out := Message{UID: uid}
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		out.ParseErr = fmt.Errorf("create reader: %w", err)
		return out
	}
	defer mr.Close()

	h := mr.Header
	if s, err := h.Subject(); err == nil {
		out.Subject = s
	} else {
		out.Subject = h.Get("Subject")
	}
	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		out.From = strings.TrimSpace(from[0].Address)
		out.FromName = strings.TrimSpace(from[0].Name)
	}
	if d, err := h.Date(); err == nil {
		out.Date = d
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) || message.IsUnknownEncoding(err) {
				continue
			}
			out.ParseErr = fmt.Errorf("next part: %w", err)
			return out
		}
		ih, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := ih.ContentType()
		b, err := io.ReadAll(p.Body)
		if err != nil {
			out.ParseErr = fmt.Errorf("read part: %w", err)
			return out
		}
		switch strings.ToLower(ct) {
		case "text/plain", "":
			if out.Text == "" {
				out.Text = string(b)
			}
		case "text/html":
			if out.HTML == "" {
				out.HTML = string(b)
			}
		}
	}
	if out.From == "" {
		out.ParseErr = fmt.Errorf("missing From address")
	}
	return out
}
