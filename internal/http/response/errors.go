package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/desplega-ai/mood/internal/platform/apierr"
)

// RespondAPIError renders err with the status carried by an *apierr.Error.
// Unclassified errors become a 500 without the internal message.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
		return
	}
	if ae.Status >= http.StatusInternalServerError && ae.Code == "internal_error" {
		_ = c.Error(err)
		RespondError(c, ae.Status, ae.Code, errors.New("internal server error"))
		return
	}
	RespondError(c, ae.Status, ae.Code, ae)
}
