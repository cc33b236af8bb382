package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/desplega-ai/mood/internal/http/response"
	"github.com/desplega-ai/mood/internal/services"
)

type MoodHandler struct {
	moods services.MoodQueryService
}

func NewMoodHandler(moods services.MoodQueryService) *MoodHandler {
	return &MoodHandler{moods: moods}
}

// GET /mood?period=all|daily|weekly|monthly&founderId=
func (mh *MoodHandler) List(c *gin.Context) {
	entries, period, err := mh.moods.List(c.Request.Context(), services.MoodQuery{
		Period:    c.Query("period"),
		FounderID: c.Query("founderId"),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"moodEntries": entries, "period": period})
}
