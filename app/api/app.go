package api

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	"github.com/stridehub/strideboard/app/api/types"
	"github.com/stridehub/strideboard/pkg/db/goals"
	"github.com/stridehub/strideboard/pkg/db/stats"
	"github.com/stridehub/strideboard/pkg/leaderboard"
	"github.com/stridehub/strideboard/pkg/logging"
	"github.com/stridehub/strideboard/pkg/redis"
	"github.com/stridehub/strideboard/pkg/utils"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	statsDb, statsErr := stats.New(ctx, logger)
	if statsErr != nil {
		logger.Fatal("Unable to initialize stats store", zap.Error(statsErr))
	}

	if err := statsDb.InitializeDB(ctx); err != nil {
		logger.Fatal("Unable to initialize stats tables", zap.Error(err))
	}

	// Goals share the stats store's connection pool and database.
	goalsDb := goals.NewWithSharedClient(statsDb.Client)
	if err := goalsDb.InitializeDB(ctx); err != nil {
		logger.Fatal("Unable to initialize goal tables", zap.Error(err))
	}

	// Initialize Redis for page caching and live events (optional)
	var redisClient *redis.Client
	if utils.Env("REDIS_ENABLED", "true") == "true" {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis client - leaderboard reads will be uncached",
				zap.Error(err))
			redisClient = nil
		}
	} else {
		logger.Info("Redis disabled - leaderboard reads will be uncached")
	}

	// A nil Redis client disables the cache and events; the service treats
	// that as a permanent cache miss.
	var cacheStore leaderboard.CacheStore
	var events leaderboard.Publisher
	if redisClient != nil {
		cacheStore = redisClient
		events = redisClient
	}

	cache := leaderboard.NewCache(cacheStore, logger)
	engine := leaderboard.NewEngine(statsDb, logger)
	service := leaderboard.NewService(statsDb, goalsDb, cache, engine, events, logger)

	app := &types.App{
		StatsDB:     statsDb,
		GoalsDB:     goalsDb,
		RedisClient: redisClient,
		Service:     service,
		LiveClients: xsync.NewMap[string, time.Time](),
		Logger:      logger,
	}

	if err := SetupScheduler(ctx, app); err != nil {
		logger.Fatal("Unable to initialize scheduler", zap.Error(err))
	}

	return app
}
