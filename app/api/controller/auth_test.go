package controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestController(t *testing.T) *Controller {
	phash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	return &Controller{
		AdminToken: "testtoken",
		AuthUser:   "admin",
		AuthHash:   phash,
		JWTSecret:  []byte("test-session-secret"),
	}
}

func signSession(t *testing.T, c *Controller, subject, role string, exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  time.Now().Unix(),
	})
	ss, err := token.SignedString(c.JWTSecret)
	require.NoError(t, err)
	return ss
}

func TestValidateToken(t *testing.T) {
	c := newTestController(t)

	r := httptest.NewRequest("GET", "/", nil)
	assert.False(t, c.ValidateToken(r))

	r.Header.Set("Authorization", "Bearer testtoken")
	assert.True(t, c.ValidateToken(r))

	r.Header.Set("Authorization", "Bearer wrong")
	assert.False(t, c.ValidateToken(r))

	r.Header.Set("Authorization", "testtoken") // missing Bearer prefix
	assert.False(t, c.ValidateToken(r))
}

func TestRequireUser(t *testing.T) {
	c := newTestController(t)

	var gotUserID string
	handler := c.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = RequestUserID(r)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid bearer session", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+signSession(t, c, "user-42", "user", time.Now().Add(time.Hour)))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-42", gotUserID)
	})

	t.Run("valid session cookie", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: sessionCookie, Value: signSession(t, c, "user-7", "user", time.Now().Add(time.Hour))})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-7", gotUserID)
	})

	t.Run("expired session", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+signSession(t, c, "user-42", "user", time.Now().Add(-time.Hour)))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := &Controller{JWTSecret: []byte("some-other-secret")}
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+signSession(t, other, "user-42", "user", time.Now().Add(time.Hour)))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	c := newTestController(t)

	handler := c.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("api token passes", func(t *testing.T) {
		r := httptest.NewRequest("DELETE", "/", nil)
		r.Header.Set("Authorization", "Bearer testtoken")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("admin session passes", func(t *testing.T) {
		r := httptest.NewRequest("DELETE", "/", nil)
		r.Header.Set("Authorization", "Bearer "+signSession(t, c, "admin", "admin", time.Now().Add(time.Hour)))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-admin session forbidden", func(t *testing.T) {
		r := httptest.NewRequest("DELETE", "/", nil)
		r.Header.Set("Authorization", "Bearer "+signSession(t, c, "user-42", "user", time.Now().Add(time.Hour)))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no credentials unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("DELETE", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandleLogin(t *testing.T) {
	c := newTestController(t)

	t.Run("valid credentials issue a session", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"admin","password":"secret"}`))
		w := httptest.NewRecorder()
		c.HandleLogin(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "token")

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, sessionCookie, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"admin","password":"nope"}`))
		w := httptest.NewRecorder()
		c.HandleLogin(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"admin"}`))
		w := httptest.NewRecorder()
		c.HandleLogin(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
