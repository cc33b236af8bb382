package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/desplega-ai/mood/internal/http/response"
	"github.com/desplega-ai/mood/internal/services"
)

type FounderHandler struct {
	founders services.FounderService
}

func NewFounderHandler(founders services.FounderService) *FounderHandler {
	return &FounderHandler{founders: founders}
}

// GET /founders
func (fh *FounderHandler) List(c *gin.Context) {
	list, err := fh.founders.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"founders": list})
}

// POST /founders
// body: { "name": "...", "email": "..." }
func (fh *FounderHandler) Create(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	f, err := fh.founders.Create(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"founder": f})
}

// PATCH /founders/:id
// body: { "name"?: "...", "email"?: "..." }
func (fh *FounderHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	f, err := fh.founders.Update(c.Request.Context(), id, services.FounderPatch{Name: req.Name, Email: req.Email})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"founder": f})
}

// DELETE /founders/:id
func (fh *FounderHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := fh.founders.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "founder_not_found", errors.New("founder not found"))
		return uuid.Nil, false
	}
	return id, true
}
