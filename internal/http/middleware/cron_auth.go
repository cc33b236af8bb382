package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/desplega-ai/mood/internal/http/response"
)

// RequireCronSecret admits requests carrying "Authorization: Bearer <secret>".
// An empty secret rejects everything.
func RequireCronSecret(secret string) gin.HandlerFunc {
	want := []byte(secret)
	return func(c *gin.Context) {
		got := []byte(bearerToken(c))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
				Error: response.APIError{Message: "Unauthorized", Code: "unauthorized"},
			})
			return
		}
		c.Next()
	}
}
