package stats

import (
	"context"
	"errors"

	leaderboardmodels "github.com/stridehub/strideboard/pkg/db/models/leaderboard"
)

// ErrNotFound is returned when a user has no participant_stats row.
var ErrNotFound = errors.New("participant stats not found")

// Store describes the participant-stats operations required by the
// leaderboard service and the ranking engine.
type Store interface {
	DatabaseName() string

	// --- Init

	InitializeDB(ctx context.Context) error

	// --- Writes

	UpsertStats(ctx context.Context, stats *leaderboardmodels.ParticipantStats) error
	UpdateRanks(ctx context.Context, ranked []*leaderboardmodels.ParticipantStats) error
	DeleteAll(ctx context.Context) error

	// --- Reads

	QueryAllSorted(ctx context.Context) ([]*leaderboardmodels.ParticipantStats, error)
	QueryPage(ctx context.Context, limit, offset int) ([]*leaderboardmodels.ParticipantStats, error)
	GetByUser(ctx context.Context, userID string) (*leaderboardmodels.ParticipantStats, error)
	Count(ctx context.Context) (uint64, error)

	Close() error
}
