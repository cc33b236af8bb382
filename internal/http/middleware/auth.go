package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/desplega-ai/mood/internal/http/response"
	"github.com/desplega-ai/mood/internal/platform/ctxutil"
	"github.com/desplega-ai/mood/internal/platform/logger"
	"github.com/desplega-ai/mood/internal/services"
)

type AuthMiddleware struct {
	log    *logger.Logger
	access services.AccessService
}

func NewAuthMiddleware(log *logger.Logger, access services.AccessService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), access: access}
}

// RequireAPIKey resolves the bearer token to a tenant and stores it as
// request data.
func (am *AuthMiddleware) RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
				Error: response.APIError{Message: "missing or invalid token", Code: "unauthorized"},
			})
			return
		}
		key, err := am.access.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.RespondAPIError(c, err)
			c.Abort()
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			APIKeyID:    key.ID,
			CompanyName: key.CompanyName,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
