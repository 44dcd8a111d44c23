package controller

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stridehub/strideboard/app/api/types"
	"github.com/stridehub/strideboard/pkg/utils"
)

type Controller struct {
	App        *types.App
	AdminToken string
	AuthUser   string
	AuthHash   []byte
	JWTSecret  []byte
}

// NewController returns a new controller. Admin credentials and the session
// secret come from the environment; the platform's auth service signs user
// sessions with the same secret.
func NewController(app *types.App) *Controller {
	adminToken := utils.Env("ADMIN_TOKEN", "devtoken")
	adminUser := utils.Env("ADMIN_USER", "admin")
	adminPass := utils.Env("ADMIN_PASSWORD", "admin")
	jwtSecret := []byte(utils.Env("SESSION_SECRET", "change-me-please"))

	phash, _ := utils.HashOrRead(adminPass)

	return &Controller{
		App:        app,
		AdminToken: adminToken,
		AuthUser:   adminUser,
		AuthHash:   phash,
		JWTSecret:  jwtSecret,
	}
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods("GET")

	r.HandleFunc("/leaderboard", c.HandleLeaderboard).Methods("GET")
	r.Handle("/leaderboard/user-position", c.RequireUser(http.HandlerFunc(c.HandleUserPosition))).Methods("GET")
	r.Handle("/leaderboard/reset", c.RequireAdmin(http.HandlerFunc(c.HandleReset))).Methods("DELETE")
	r.Handle("/leaderboard/update-points", c.RequireAdmin(http.HandlerFunc(c.HandleUpdatePoints))).Methods("POST")
	r.HandleFunc("/leaderboard/live", c.HandleWebSocket).Methods("GET")

	r.HandleFunc("/auth/login", c.HandleLogin).Methods("POST")

	return r, nil
}

// WithCORS is a middleware that adds CORS headers to the response.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodPost+", "+http.MethodDelete+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
