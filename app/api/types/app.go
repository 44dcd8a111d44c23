package types

import (
	"context"
	"net/http"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/stridehub/strideboard/pkg/db/goals"
	"github.com/stridehub/strideboard/pkg/db/stats"
	"github.com/stridehub/strideboard/pkg/leaderboard"
	"github.com/stridehub/strideboard/pkg/redis"
)

type App struct {
	StatsDB *stats.DB
	GoalsDB *goals.DB

	// RedisClient backs the page cache and the live event feed. Nil when
	// Redis is disabled - both degrade gracefully.
	RedisClient *redis.Client

	// Service is the leaderboard orchestrator every handler calls into.
	Service *leaderboard.Service

	// Cron drives the rank-recompute safety net and the streak rollover.
	Cron *cron.Cron

	// LiveClients tracks connected websocket clients by remote address.
	LiveClients *xsync.Map[string, time.Time]

	// Zap Logger
	Logger *zap.Logger

	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// Start starts the application and blocks until ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	if a.Cron != nil {
		a.Cron.Start()
	}

	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.Cron != nil {
		stopCtx := a.Cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-shutdownCtx.Done():
		}
	}

	_ = a.Server.Shutdown(shutdownCtx)

	if err := a.StatsDB.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("Goodbye!")
}
