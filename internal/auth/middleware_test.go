package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/users"
)

type fakeVerifier struct {
	tokens  map[string]Session
	revoked []string
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (Session, error) {
	s, ok := f.tokens[token]
	if !ok {
		return Session{}, ErrInvalidToken
	}
	return s, nil
}

func (f *fakeVerifier) Revoke(ctx context.Context, userID string) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

type fakeEnsurer struct {
	calls []users.UpsertUser
	err   error
}

func (f *fakeEnsurer) EnsureUser(ctx context.Context, u users.UpsertUser) (string, error) {
	f.calls = append(f.calls, u)
	if f.err != nil {
		return "", f.err
	}
	return "db-" + u.FirebaseUID, nil
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		s := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"user": s.UserID, "email": s.Email, "db": UserDBID(c), "cred": s.Credential})
	})
	r.GET("/who", handlers...)
	return r
}

func TestRequireToken(t *testing.T) {
	v := &fakeVerifier{tokens: map[string]Session{
		"good": {UserID: "u1", Email: "u1@example.com", Credential: "good"},
	}}
	r := newRouter(RequireToken(v))

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "missing authorization token")
	})

	t.Run("invalid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		req.Header.Set("Authorization", "Bearer bad")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		req.Header.Set("Authorization", "Bearer good")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":"u1","email":"u1@example.com","db":"","cred":"good"}`, w.Body.String())
	})
}

func TestHeaderUserRejectsAnonymous(t *testing.T) {
	r := newRouter(HeaderUser(false))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), ErrMissingUser.Error())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("X-User-Id", "alice")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"alice"`)
}

func TestHeaderUserDemoFallback(t *testing.T) {
	r := newRouter(HeaderUser(true))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Contains(t, w.Body.String(), `"user":"demo-user"`)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("X-User-Id", "alice")
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"user":"alice"`)
}

func TestWithUser(t *testing.T) {
	t.Run("upserts the session user", func(t *testing.T) {
		ens := &fakeEnsurer{}
		r := newRouter(HeaderUser(true), WithUser(ens))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		req.Header.Set("X-User-Id", "alice")
		req.Header.Set("X-User-Name", "Alice")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"db":"db-alice"`)
		require.Len(t, ens.calls, 1)
		assert.Equal(t, "Alice", ens.calls[0].DisplayName)
	})

	t.Run("repository failure aborts", func(t *testing.T) {
		r := newRouter(HeaderUser(true), WithUser(&fakeEnsurer{err: errors.New("db down")}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("requires a session", func(t *testing.T) {
		r := newRouter(WithUser(&fakeEnsurer{}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
