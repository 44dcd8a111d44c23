package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	leaderboardmodels "github.com/stridehub/strideboard/pkg/db/models/leaderboard"
	"github.com/stridehub/strideboard/pkg/db/stats"
)

// EventChannel is the Redis Pub/Sub channel mutations are announced on.
// The live websocket feed subscribes to "strideboard:leaderboard:*".
const EventChannel = "strideboard:leaderboard:updated"

// ErrInvalidPage is returned when pagination parameters are out of range.
var ErrInvalidPage = errors.New("page index and page size must be >= 1")

// GoalSource is the external goal/milestone data source the stat aggregation
// derives from. Implemented by pkg/db/goals.DB.
type GoalSource interface {
	FindCompletedGoals(ctx context.Context, userID string) ([]*leaderboardmodels.Goal, error)
	LastCompletionByUser(ctx context.Context) (map[string]time.Time, error)
}

// Publisher announces leaderboard mutations. Implemented by pkg/redis.Client;
// nil disables events.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{})
}

// Service orchestrates the read and write paths. It is the only component
// HTTP handlers and scheduled jobs interact with directly.
type Service struct {
	stats  stats.Store
	goals  GoalSource
	cache  *Cache
	engine *Engine
	events Publisher
	logger *zap.Logger
	pool   pond.Pool
}

// NewService wires the service. events may be nil when Redis is disabled.
func NewService(store stats.Store, source GoalSource, cache *Cache, engine *Engine, events Publisher, logger *zap.Logger) *Service {
	return &Service{
		stats:  store,
		goals:  source,
		cache:  cache,
		engine: engine,
		events: events,
		logger: logger,
		pool:   pond.NewPool(4),
	}
}

// FetchPage serves one leaderboard page. Cache hits return the stored page
// with its totals; misses fetch the page rows and the total count as two
// parallel independent reads, repopulate the cache, and return totals that
// are accurate at the moment of the query.
func (s *Service) FetchPage(ctx context.Context, pageSize, pageIndex int) (*Page, error) {
	if pageSize < 1 || pageIndex < 1 {
		return nil, ErrInvalidPage
	}

	if page, ok := s.cache.Get(ctx, pageIndex, pageSize); ok {
		return page, nil
	}

	var (
		rows  []*leaderboardmodels.ParticipantStats
		total uint64
	)

	group := s.pool.NewGroupContext(ctx)
	group.SubmitErr(func() error {
		var err error
		rows, err = s.stats.QueryPage(group.Context(), pageSize, (pageIndex-1)*pageSize)
		return err
	})
	group.SubmitErr(func() error {
		var err error
		total, err = s.stats.Count(group.Context())
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("fetch leaderboard page: %w", err)
	}

	page := &Page{
		Entries: EntriesFromStats(rows),
		Pagination: Pagination{
			TotalEntries: total,
			CurrentPage:  pageIndex,
			TotalPages:   int((total + uint64(pageSize) - 1) / uint64(pageSize)),
		},
	}

	s.cache.Set(ctx, pageIndex, pageSize, page)
	return page, nil
}

// GetUserPosition returns the user's 1-based position and entry. The
// materialized rank is preferred; a full ordered scan is the fallback for
// rows written since the last recomputation. Returns stats.ErrNotFound when
// the user has no row.
func (s *Service) GetUserPosition(ctx context.Context, userID string) (*Position, error) {
	row, err := s.stats.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if row.Ranked() {
		return &Position{
			UserPosition: row.Rank,
			UserEntry:    EntryFromStats(row),
		}, nil
	}

	// Not yet ranked: derive the position from the full ordered set.
	sorted, err := s.stats.QueryAllSorted(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve position for user %s: %w", userID, err)
	}
	for i, r := range sorted {
		if r.UserID == userID {
			return &Position{
				UserPosition: uint64(i + 1),
				UserEntry:    EntryFromStats(r),
			}, nil
		}
	}
	return nil, stats.ErrNotFound
}

// UpdateForUser recomputes the user's aggregates from the goal source,
// replaces (not increments) the stored counters, recomputes all ranks, and
// invalidates every cached page. Streak days are preserved from the existing
// row - the rollover job owns that counter.
func (s *Service) UpdateForUser(ctx context.Context, userID string) error {
	completed, err := s.goals.FindCompletedGoals(ctx, userID)
	if err != nil {
		return fmt.Errorf("aggregate goals for user %s: %w", userID, err)
	}

	var (
		totalPoints         int64
		completedMilestones int64
	)
	for _, g := range completed {
		totalPoints += int64(g.Points)
		completedMilestones += int64(g.CompletedMilestones())
	}

	row := &leaderboardmodels.ParticipantStats{
		UserID:              userID,
		CompletedGoals:      leaderboardmodels.ClampCounter(int64(len(completed))),
		CompletedMilestones: leaderboardmodels.ClampCounter(completedMilestones),
		TotalPoints:         leaderboardmodels.ClampCounter(totalPoints),
	}

	if existing, err := s.stats.GetByUser(ctx, userID); err == nil {
		row.StreakDays = existing.StreakDays
		row.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, stats.ErrNotFound) {
		return fmt.Errorf("load existing stats for user %s: %w", userID, err)
	}

	if err := s.stats.UpsertStats(ctx, row); err != nil {
		return fmt.Errorf("upsert stats for user %s: %w", userID, err)
	}

	if _, err := s.engine.RecalculateAll(ctx); err != nil {
		return err
	}

	s.cache.InvalidateAll(ctx)
	s.publishEvent(ctx, "stats.updated", userID)
	return nil
}

// ResetAll deletes every participant row and invalidates the entire cache.
// Idempotent: resetting an already empty store succeeds.
func (s *Service) ResetAll(ctx context.Context) error {
	if err := s.stats.DeleteAll(ctx); err != nil {
		return fmt.Errorf("reset leaderboard: %w", err)
	}
	s.cache.InvalidateAll(ctx)
	s.publishEvent(ctx, "reset", "")
	return nil
}

// RecalculateAndInvalidate runs a full rank recomputation followed by a bulk
// cache invalidation. Used by the scheduled safety-net job so partial rank
// writes self-heal even when no mutation arrives.
func (s *Service) RecalculateAndInvalidate(ctx context.Context) error {
	if _, err := s.engine.RecalculateAll(ctx); err != nil {
		return err
	}
	s.cache.InvalidateAll(ctx)
	return nil
}

// RolloverStreaks zeroes streak_days for every participant whose most recent
// goal completion predates cutoff, then recomputes ranks and invalidates the
// cache when anything changed.
func (s *Service) RolloverStreaks(ctx context.Context, cutoff time.Time) error {
	lastCompletion, err := s.goals.LastCompletionByUser(ctx)
	if err != nil {
		return fmt.Errorf("streak rollover: %w", err)
	}

	rows, err := s.stats.QueryAllSorted(ctx)
	if err != nil {
		return fmt.Errorf("streak rollover: %w", err)
	}

	var reset int
	for _, row := range rows {
		if row.StreakDays == 0 {
			continue
		}
		if last, ok := lastCompletion[row.UserID]; ok && !last.Before(cutoff) {
			continue
		}
		row.StreakDays = 0
		if err := s.stats.UpsertStats(ctx, row); err != nil {
			return fmt.Errorf("reset streak for user %s: %w", row.UserID, err)
		}
		reset++
	}

	if reset == 0 {
		return nil
	}

	s.logger.Info("Reset idle streaks", zap.Int("users", reset))
	if _, err := s.engine.RecalculateAll(ctx); err != nil {
		return err
	}
	s.cache.InvalidateAll(ctx)
	s.publishEvent(ctx, "streaks.rolled", "")
	return nil
}

func (s *Service) publishEvent(ctx context.Context, kind, userID string) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"type":   kind,
		"userId": userID,
		"at":     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	s.events.Publish(ctx, EventChannel, string(payload))
}
