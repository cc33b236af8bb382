package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/desplega-ai/mood/internal/platform/imap"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

// MailboxInspector is the read-only view of the reply mailbox.
type MailboxInspector interface {
	ListFolders(ctx context.Context) ([]imap.Folder, error)
	Unseen(ctx context.Context) (*imap.UnseenReport, error)
}

type DebugHandler struct {
	log     *logger.Logger
	mailbox MailboxInspector
}

func NewDebugHandler(log *logger.Logger, mailbox MailboxInspector) *DebugHandler {
	return &DebugHandler{log: log.With("handler", "DebugHandler"), mailbox: mailbox}
}

// GET /debug/mailbox/folders
func (dh *DebugHandler) Folders(c *gin.Context) {
	folders, err := dh.mailbox.ListFolders(c.Request.Context())
	if err != nil {
		dh.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

// GET /debug/mailbox/unseen
func (dh *DebugHandler) Unseen(c *gin.Context) {
	rep, err := dh.mailbox.Unseen(c.Request.Context())
	if err != nil {
		dh.fail(c, err)
		return
	}
	emails := make([]gin.H, 0, len(rep.Emails))
	for _, e := range rep.Emails {
		emails = append(emails, gin.H{"from": e.From, "subject": e.Subject, "date": e.Date})
	}
	c.JSON(http.StatusOK, gin.H{
		"found":   len(emails),
		"emails":  emails,
		"boxInfo": gin.H{"total": rep.Total, "unseen": rep.Unseen},
	})
}

func (dh *DebugHandler) fail(c *gin.Context, err error) {
	dh.log.Error("Mailbox inspection failed", "path", c.FullPath(), "error", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
}
