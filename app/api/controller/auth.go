package controller

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const userIDKey contextKey = "userID"

const sessionCookie = "sb_session"

// ValidateToken checks if the Authorization header contains the AdminToken.
func (c *Controller) ValidateToken(r *http.Request) bool {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		return token == c.AdminToken
	}
	return false
}

// sessionClaims parses and validates the session JWT carried as a bearer
// token or session cookie, returning its claims.
func (c *Controller) sessionClaims(r *http.Request) (jwt.MapClaims, bool) {
	raw := ""
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		raw = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if raw == "" {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			return nil, false
		}
		raw = cookie.Value
	}

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) { return c.JWTSecret, nil })
	if err != nil || !tok.Valid {
		return nil, false
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

// RequireUser middleware: any valid session. The subject claim is the user id
// and is attached to the request context.
func (c *Controller) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := c.sessionClaims(r)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, sub)))
	})
}

// RequireAdmin middleware: the API token, or a session with the admin role.
func (c *Controller) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.ValidateToken(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, ok := c.sessionClaims(r)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}

		if role, _ := claims["role"].(string); role != "admin" {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "forbidden"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequestUserID returns the authenticated user id attached by RequireUser.
func RequestUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// HandleLogin checks the admin password and issues a session.
func (c *Controller) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" || body.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "username and password are required"})
		return
	}

	if body.Username != c.AuthUser || bcrypt.CompareHashAndPassword(c.AuthHash, []byte(body.Password)) != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
		return
	}

	token := c.IssueSession(w, body.Username, "admin")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// IssueSession issues a session cookie and returns the signed token.
func (c *Controller) IssueSession(w http.ResponseWriter, subject, role string) string {
	ttl := 8 * time.Hour
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	})
	ss, _ := token.SignedString(c.JWTSecret)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    ss,
		Path:     "/",
		HttpOnly: true,
		Secure:   os.Getenv("ENVIRONMENT") == "production",
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(ttl.Seconds()),
	})
	return ss
}
