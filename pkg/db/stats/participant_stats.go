package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	leaderboardmodels "github.com/stridehub/strideboard/pkg/db/models/leaderboard"
)

// statsColumns is the column list shared by SELECT and INSERT statements,
// derived from the schema so the two can never drift.
var statsColumns = strings.Join(leaderboardmodels.ColumnsToNameList(leaderboardmodels.ParticipantStatsColumns), ", ")

// sortClause is the leaderboard total order: descending on the score tuple,
// user_id ascending as the stable tie-break.
const sortClause = "total_points DESC, completed_goals DESC, completed_milestones DESC, streak_days DESC, user_id ASC"

// UpsertStats replaces the user's counters wholesale. ReplacingMergeTree keeps
// the row with the newest updated_at, so this insert supersedes any prior row
// for the same user once parts merge; FINAL reads observe it immediately.
func (db *DB) UpsertStats(ctx context.Context, s *leaderboardmodels.ParticipantStats) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	query := fmt.Sprintf(
		`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, leaderboardmodels.ParticipantStatsTableName, statsColumns,
	)
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	if err := batch.Append(
		s.UserID,
		s.CompletedGoals,
		s.CompletedMilestones,
		s.TotalPoints,
		s.StreakDays,
		s.Rank,
		s.CreatedAt,
		s.UpdatedAt,
	); err != nil {
		return err
	}

	return batch.Send()
}

// UpdateRanks persists freshly assigned ranks as one batch insert. Every row
// carries the same updated_at so a concurrent full recomputation either wins
// or loses wholesale rather than interleaving per-user.
func (db *DB) UpdateRanks(ctx context.Context, ranked []*leaderboardmodels.ParticipantStats) error {
	if len(ranked) == 0 {
		return nil
	}

	now := time.Now().UTC()

	query := fmt.Sprintf(
		`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, leaderboardmodels.ParticipantStatsTableName, statsColumns,
	)
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, s := range ranked {
		s.UpdatedAt = now
		if err := batch.Append(
			s.UserID,
			s.CompletedGoals,
			s.CompletedMilestones,
			s.TotalPoints,
			s.StreakDays,
			s.Rank,
			s.CreatedAt,
			s.UpdatedAt,
		); err != nil {
			return err
		}
	}

	return batch.Send()
}

// QueryAllSorted returns every row in leaderboard order.
func (db *DB) QueryAllSorted(ctx context.Context) ([]*leaderboardmodels.ParticipantStats, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM "%s"."%s" FINAL ORDER BY %s`,
		statsColumns, db.Name, leaderboardmodels.ParticipantStatsTableName, sortClause,
	)

	var rows []*leaderboardmodels.ParticipantStats
	if err := db.Select(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query sorted stats: %w", err)
	}
	return rows, nil
}

// QueryPage returns one page of rows in leaderboard order.
func (db *DB) QueryPage(ctx context.Context, limit, offset int) ([]*leaderboardmodels.ParticipantStats, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM "%s"."%s" FINAL ORDER BY %s LIMIT ? OFFSET ?`,
		statsColumns, db.Name, leaderboardmodels.ParticipantStatsTableName, sortClause,
	)

	var rows []*leaderboardmodels.ParticipantStats
	if err := db.Select(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("query stats page: %w", err)
	}
	return rows, nil
}

// GetByUser returns the user's row, or ErrNotFound when none exists.
func (db *DB) GetByUser(ctx context.Context, userID string) (*leaderboardmodels.ParticipantStats, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM "%s"."%s" FINAL WHERE user_id = ? LIMIT 1`,
		statsColumns, db.Name, leaderboardmodels.ParticipantStatsTableName,
	)

	var rows []*leaderboardmodels.ParticipantStats
	if err := db.Select(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("get stats for user %s: %w", userID, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Count returns the number of participant rows.
func (db *DB) Count(ctx context.Context) (uint64, error) {
	query := fmt.Sprintf(
		`SELECT count() FROM "%s"."%s" FINAL`,
		db.Name, leaderboardmodels.ParticipantStatsTableName,
	)

	var count uint64
	if err := db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count stats: %w", err)
	}
	return count, nil
}

// DeleteAll removes every participant row. TRUNCATE is a no-op on an empty
// table, so repeated resets succeed.
func (db *DB) DeleteAll(ctx context.Context) error {
	query := fmt.Sprintf(
		`TRUNCATE TABLE IF EXISTS "%s"."%s"`,
		db.Name, leaderboardmodels.ParticipantStatsTableName,
	)
	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("truncate %s: %w", leaderboardmodels.ParticipantStatsTableName, err)
	}
	return nil
}
