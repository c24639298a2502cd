package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
)

type revoker struct {
	revoked []string
	err     error
}

func (r *revoker) Verify(ctx context.Context, token string) (auth.Session, error) {
	return auth.Session{}, auth.ErrInvalidToken
}

func (r *revoker) Revoke(ctx context.Context, userID string) error {
	r.revoked = append(r.revoked, userID)
	return r.err
}

func setup(v auth.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/auth", auth.HeaderUser(true))
	New(v).Register(g)
	return r
}

func TestLogoutRevokesTokens(t *testing.T) {
	v := &revoker{}
	r := setup(v)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("X-User-Id", "alice")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"alice"}, v.revoked)
}

func TestLogoutRevokeFailure(t *testing.T) {
	r := setup(&revoker{err: errors.New("firebase unavailable")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"retryable":true`)
}

func TestLogoutHeaderMode(t *testing.T) {
	r := setup(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMe(t *testing.T) {
	r := setup(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("X-User-Id", "bob")
	req.Header.Set("X-User-Email", "bob@example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"bob"`)
	assert.Contains(t, w.Body.String(), `"email":"bob@example.com"`)
}
