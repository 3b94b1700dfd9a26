package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/storefront/internal/errors"
)

// apiErrorEnvelope is the uniform failure shape: {"error": {message, code}}.
type apiErrorEnvelope struct {
	Error *svcErr.APIError `json:"error"`
}

// respondError maps any error to its HTTP status and writes the envelope.
// 5xx causes are logged server-side; the client only ever sees the
// non-leaking mapped message.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	apiErr := svcErr.Map(err)
	if apiErr.Status >= http.StatusInternalServerError {
		log.Error("request failed",
			"method", c.Request.Method, "path", c.FullPath(), "err", err)
	}
	c.JSON(apiErr.Status, apiErrorEnvelope{Error: apiErr})
}
