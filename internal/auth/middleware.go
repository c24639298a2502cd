package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/users"
)

// RequireToken validates the bearer token with v and stores the session.
func RequireToken(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": ErrMissingToken.Error()})
			return
		}

		s, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			logging.NewLogger(c.Request.Context()).LogWarnf("auth", "token rejected: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": ErrInvalidToken.Error()})
			return
		}

		setSession(c, s)
		c.Next()
	}
}

// HeaderUser trusts the X-User-Id header. A request without it is rejected
// unless allowDemo is set, in which case it runs as "demo-user".
// Use this ONLY for development/testing.
func HeaderUser(allowDemo bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			if !allowDemo {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": ErrMissingUser.Error()})
				return
			}
			uid = "demo-user"
		}

		setSession(c, Session{
			UserID:     uid,
			Email:      c.GetHeader("X-User-Email"),
			Credential: extractToken(c),
		})
		c.Next()
	}
}

type UserEnsurer interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (string, error)
}

// WithUser upserts the session's user row and records its database id.
// It must run after RequireToken or HeaderUser.
func WithUser(repo UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := SessionFrom(c)
		if !s.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
			return
		}

		uid, err := repo.EnsureUser(c.Request.Context(), users.UpsertUser{
			FirebaseUID: s.UserID,
			Email:       s.Email,
			DisplayName: c.GetHeader("X-User-Name"),
			PhotoURL:    c.GetHeader("X-User-Photo"),
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user: " + err.Error()})
			return
		}

		c.Set(CtxUserDBID, uid)
		c.Next()
	}
}
