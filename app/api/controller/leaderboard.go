package controller

import (
	"errors"
	"net/http"

	"github.com/go-jose/go-jose/v4/json"

	"github.com/stridehub/strideboard/pkg/db/stats"
	"github.com/stridehub/strideboard/pkg/leaderboard"
)

// HandleLeaderboard returns one leaderboard page.
func (c *Controller) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	spec, err := parsePageSpec(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	page, err := c.App.Service.FetchPage(ctx, spec.Limit, spec.Page)
	if err != nil {
		if errors.Is(err, leaderboard.ErrInvalidPage) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(page)
}

// HandleUserPosition returns the authenticated user's position and entry.
func (c *Controller) HandleUserPosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := RequestUserID(r)

	position, err := c.App.Service.GetUserPosition(ctx, userID)
	if err != nil {
		if errors.Is(err, stats.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "no leaderboard entry for user"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(position)
}

// HandleReset wipes every participant row and the entire cache. Admin only.
func (c *Controller) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.App.Service.ResetAll(ctx); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"status": "reset"})
}

// HandleUpdatePoints recomputes one user's aggregates from the goal source.
// Admin only.
func (c *Controller) HandleUpdatePoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "userId is required"})
		return
	}

	if err := c.App.Service.UpdateForUser(ctx, body.UserID); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"status": "updated", "userId": body.UserID})
}
