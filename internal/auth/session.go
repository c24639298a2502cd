package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxUserDBID    = "user_db_id"
	ctxSession     = "session"
)

var (
	ErrMissingToken = errors.New("missing authorization token")
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingUser  = errors.New("missing X-User-Id header")
)

// Session is the caller's identity and opaque credential for one request.
// It is built by middleware and handed to every service call explicitly.
type Session struct {
	UserID     string
	Email      string
	Credential string
}

func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.UserID) != ""
}

// TokenVerifier turns a bearer credential into a Session and can invalidate
// a user's outstanding credentials.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Session, error)
	Revoke(ctx context.Context, userID string) error
}

func setSession(c *gin.Context, s Session) {
	c.Set(ctxSession, s)
	c.Set(CtxFirebaseUID, s.UserID)
}

// SessionFrom returns the request's session, or the zero Session if the
// request was not authenticated.
func SessionFrom(c *gin.Context) Session {
	if v, ok := c.Get(ctxSession); ok {
		if s, ok := v.(Session); ok {
			return s
		}
	}
	return Session{}
}

// UserDBID is the users table id resolved by WithUser.
func UserDBID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserDBID))
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
