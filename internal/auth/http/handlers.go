package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
)

type Handler struct {
	verifier auth.TokenVerifier // nil in header mode
}

func New(verifier auth.TokenVerifier) *Handler {
	return &Handler{verifier: verifier}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	rg.POST("/logout", h.Logout)
}

// Me returns the identity attached to the current request.
func (h *Handler) Me(c *gin.Context) {
	s := auth.SessionFrom(c)
	if !s.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"user_id":    s.UserID,
		"email":      s.Email,
		"user_db_id": auth.UserDBID(c),
	})
}

// Logout ends the session: all refresh tokens of the user are revoked, and
// ID tokens issued before now fail the revocation check.
func (h *Handler) Logout(c *gin.Context) {
	s := auth.SessionFrom(c)
	if !s.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}

	if h.verifier != nil {
		if err := h.verifier.Revoke(c.Request.Context(), s.UserID); err != nil {
			logging.NewLogger(c.Request.Context()).LogError("logout", err)
			c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "failed to revoke session", "retryable": true})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
