package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/desplega-ai/mood/internal/domain"
	"github.com/desplega-ai/mood/internal/domain/mood"
	"github.com/desplega-ai/mood/internal/http/response"
	"github.com/desplega-ai/mood/internal/modules/moodcheck"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

// MoodCheck is the reply and dispatch surface the cron routes drive.
type MoodCheck interface {
	ProcessReplies(ctx context.Context) (*moodcheck.PollResult, error)
	SendPrompts(ctx context.Context, slot types.TimeOfDay) (*moodcheck.DispatchSummary, error)
	ProcessManual(ctx context.Context, email, text string) (*moodcheck.ManualResult, error)
}

type CronHandler struct {
	log *logger.Logger
	mc  MoodCheck
}

func NewCronHandler(log *logger.Logger, mc MoodCheck) *CronHandler {
	return &CronHandler{log: log.With("handler", "CronHandler"), mc: mc}
}

func (ch *CronHandler) internalError(c *gin.Context, err error) {
	ch.log.Error("Cron job failed", "path", c.FullPath(), "error", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
}

// GET|POST /cron/process-email-replies
func (ch *CronHandler) ProcessReplies(c *gin.Context) {
	res, err := ch.mc.ProcessReplies(c.Request.Context())
	if err != nil {
		ch.internalError(c, err)
		return
	}
	body := gin.H{
		"success":   true,
		"processed": res.Processed,
		"results":   res.Results,
	}
	if res.Locked {
		body["locked"] = true
	}
	response.RespondOK(c, body)
}

// GET /cron/send-morning-emails
func (ch *CronHandler) SendMorning(c *gin.Context) { ch.send(c, types.Morning) }

// GET /cron/send-afternoon-emails
func (ch *CronHandler) SendAfternoon(c *gin.Context) { ch.send(c, types.Afternoon) }

func (ch *CronHandler) send(c *gin.Context, slot types.TimeOfDay) {
	sum, err := ch.mc.SendPrompts(c.Request.Context(), slot)
	if err != nil {
		ch.internalError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"success": true,
		"sent":    sum.Sent,
		"failed":  sum.Failed,
		"skipped": sum.Skipped,
		"results": sum.Results,
	})
}

// POST /test/process-mood
// body: { "email": "...", "moodText": "..." }
func (ch *CronHandler) ProcessManual(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		MoodText string `json:"moodText"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := ch.mc.ProcessManual(c.Request.Context(), req.Email, req.MoodText)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	body := gin.H{
		"success":     true,
		"entryId":     res.EntryID,
		"founder":     gin.H{"id": res.Founder.ID, "name": res.Founder.Name, "email": res.Founder.Email},
		"degraded":    res.Classification.Degraded,
		"rawResponse": res.RawResponse,
	}
	s := res.Classification.Scores
	if res.Variant == types.VariantSingle {
		body["mood"] = s.Mood
		body["moodLabel"] = mood.Label(s.Mood)
	} else {
		body["moodYesterday"] = s.Yesterday
		body["moodToday"] = s.Today
		body["moodLabelYesterday"] = mood.Label(s.Yesterday)
		body["moodLabelToday"] = mood.Label(s.Today)
	}
	response.RespondOK(c, body)
}
