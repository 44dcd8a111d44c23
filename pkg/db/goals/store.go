package goals

import (
	"context"
	"time"

	leaderboardmodels "github.com/stridehub/strideboard/pkg/db/models/leaderboard"
)

// Store describes the slice of the goal data source the leaderboard consumes:
// completed goals with their points and milestone lists. Goal CRUD beyond
// this surface is owned elsewhere in the platform.
type Store interface {
	DatabaseName() string

	InitializeDB(ctx context.Context) error

	UpsertGoal(ctx context.Context, goal *leaderboardmodels.Goal) error
	DeleteForUser(ctx context.Context, userID string) error

	FindCompletedGoals(ctx context.Context, userID string) ([]*leaderboardmodels.Goal, error)
	LastCompletionByUser(ctx context.Context) (map[string]time.Time, error)

	Close() error
}
