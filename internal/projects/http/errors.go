package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
)

// statusFor maps a service error onto an HTTP status. Upstream wins: the
// cause it wraps may itself be a domain error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	body := gin.H{"ok": false, "error": err.Error()}

	switch status {
	case http.StatusBadGateway:
		body["retryable"] = true
	case http.StatusInternalServerError:
		logging.NewLogger(c.Request.Context()).LogError(op, err)
		body["error"] = "internal error"
	}

	c.JSON(status, body)
}

func invalidBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
}
