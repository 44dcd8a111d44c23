package goals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	leaderboardmodels "github.com/stridehub/strideboard/pkg/db/models/leaderboard"
	"github.com/stridehub/strideboard/pkg/utils"
)

var goalColumns = strings.Join(leaderboardmodels.ColumnsToNameList(leaderboardmodels.GoalColumns), ", ")

// goalRow is the flat shape read back from ClickHouse; milestones travel as
// two parallel arrays and are zipped into Milestone values afterwards.
type goalRow struct {
	GoalID             string    `ch:"goal_id"`
	UserID             string    `ch:"user_id"`
	Title              string    `ch:"title"`
	Points             uint64    `ch:"points"`
	Completed          uint8     `ch:"completed"`
	MilestoneTitles    []string  `ch:"milestone_titles"`
	MilestoneCompleted []uint8   `ch:"milestone_completed"`
	UpdatedAt          time.Time `ch:"updated_at"`
}

func (r *goalRow) toGoal() *leaderboardmodels.Goal {
	milestones := make([]leaderboardmodels.Milestone, 0, len(r.MilestoneTitles))
	for i, title := range r.MilestoneTitles {
		completed := false
		if i < len(r.MilestoneCompleted) {
			completed = r.MilestoneCompleted[i] == 1
		}
		milestones = append(milestones, leaderboardmodels.Milestone{
			Title:     title,
			Completed: completed,
		})
	}

	return &leaderboardmodels.Goal{
		GoalID:     r.GoalID,
		UserID:     r.UserID,
		Title:      r.Title,
		Points:     r.Points,
		Completed:  r.Completed == 1,
		Milestones: milestones,
		UpdatedAt:  r.UpdatedAt,
	}
}

// UpsertGoal inserts or replaces one goal snapshot.
func (db *DB) UpsertGoal(ctx context.Context, goal *leaderboardmodels.Goal) error {
	goal.UpdatedAt = time.Now().UTC()

	titles := make([]string, 0, len(goal.Milestones))
	completed := make([]uint8, 0, len(goal.Milestones))
	for _, m := range goal.Milestones {
		titles = append(titles, m.Title)
		completed = append(completed, utils.BoolToUInt8(m.Completed))
	}

	query := fmt.Sprintf(
		`INSERT INTO "%s"."%s" (%s) VALUES`,
		db.Name, leaderboardmodels.GoalsTableName, goalColumns,
	)
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	if err := batch.Append(
		goal.GoalID,
		goal.UserID,
		goal.Title,
		goal.Points,
		utils.BoolToUInt8(goal.Completed),
		titles,
		completed,
		goal.UpdatedAt,
	); err != nil {
		return err
	}

	return batch.Send()
}

// FindCompletedGoals returns the user's completed goals with their points and
// milestone lists, the inputs the stat aggregation derives from.
func (db *DB) FindCompletedGoals(ctx context.Context, userID string) ([]*leaderboardmodels.Goal, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM "%s"."%s" FINAL WHERE user_id = ? AND completed = 1 ORDER BY goal_id`,
		goalColumns, db.Name, leaderboardmodels.GoalsTableName,
	)

	var rows []*goalRow
	if err := db.Select(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("find completed goals for user %s: %w", userID, err)
	}

	out := make([]*leaderboardmodels.Goal, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toGoal())
	}
	return out, nil
}

// LastCompletionByUser returns, for every user with at least one completed
// goal, the time of the most recent completion. Used by the nightly streak
// rollover to find users who went idle.
func (db *DB) LastCompletionByUser(ctx context.Context) (map[string]time.Time, error) {
	query := fmt.Sprintf(
		`SELECT user_id, max(updated_at) AS last_completed
		 FROM "%s"."%s" FINAL
		 WHERE completed = 1
		 GROUP BY user_id`,
		db.Name, leaderboardmodels.GoalsTableName,
	)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("last completion by user: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]time.Time)
	for rows.Next() {
		var (
			userID        string
			lastCompleted time.Time
		)
		if err := rows.Scan(&userID, &lastCompleted); err != nil {
			return nil, fmt.Errorf("scan last completion row: %w", err)
		}
		out[userID] = lastCompleted
	}
	return out, rows.Err()
}

// DeleteForUser removes every goal row belonging to the user.
func (db *DB) DeleteForUser(ctx context.Context, userID string) error {
	query := fmt.Sprintf(
		`DELETE FROM "%s"."%s" WHERE user_id = ?`,
		db.Name, leaderboardmodels.GoalsTableName,
	)
	if err := db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("delete goals for user %s: %w", userID, err)
	}
	return nil
}
