package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/desplega-ai/mood/internal/http/response"
	"github.com/desplega-ai/mood/internal/services"
)

type AuthHandler struct {
	access services.AccessService
}

func NewAuthHandler(access services.AccessService) *AuthHandler {
	return &AuthHandler{access: access}
}

// POST /auth/validate
// body: { "token": "mood-..." }
func (ah *AuthHandler) Validate(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errMissing("token"))
		return
	}
	sum, err := ah.access.Validate(c.Request.Context(), req.Token)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"valid": true,
		"apiKey": gin.H{
			"id":            sum.APIKey.ID,
			"companyName":   sum.APIKey.CompanyName,
			"recurrence":    sum.APIKey.Recurrence,
			"foundersCount": sum.FoundersCount,
		},
	})
}

// POST /request-access
// body: { "name": "...", "email": "...", "companyName": "..." }
func (ah *AuthHandler) RequestAccess(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		CompanyName string `json:"companyName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if _, err := ah.access.RequestAccess(c.Request.Context(), services.AccessRequest{
		Name:        req.Name,
		Email:       req.Email,
		CompanyName: req.CompanyName,
	}); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "message": "API key created and sent to your email!"})
}

// GET /settings/recurrence
func (ah *AuthHandler) GetRecurrence(c *gin.Context) {
	r, err := ah.access.GetRecurrence(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recurrence": r})
}

// PATCH /settings/recurrence
// body: { "recurrence": "daily" | "weekly" | "monthly" }
func (ah *AuthHandler) SetRecurrence(c *gin.Context) {
	var req struct {
		Recurrence string `json:"recurrence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	key, err := ah.access.SetRecurrence(c.Request.Context(), req.Recurrence)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"apiKey": key})
}
