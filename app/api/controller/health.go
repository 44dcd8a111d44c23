package controller

import (
	"net/http"

	"github.com/go-jose/go-jose/v4/json"
)

func (c *Controller) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.App.StatsDB.Db.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "errored", "error": "database connection error"})
		return
	}

	// Redis outage degrades reads, it does not fail them; report but stay OK.
	cacheStatus := "disabled"
	if c.App.RedisClient != nil {
		cacheStatus = "ok"
		if err := c.App.RedisClient.Health(ctx); err != nil {
			cacheStatus = "unreachable"
		}
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "ok",
		"cache":       cacheStatus,
		"liveClients": c.App.LiveClients.Size(),
	})
}
