package leaderboard

import (
	"time"
)

const ParticipantStatsTableName = "participant_stats"

// ParticipantStatsColumns defines the schema for the participant_stats table.
var ParticipantStatsColumns = []ColumnDef{
	{Name: "user_id", Type: "String", Codec: "ZSTD(1)"},
	{Name: "completed_goals", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "completed_milestones", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "total_points", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "streak_days", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "rank", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "created_at", Type: "DateTime64(3)", Codec: "DoubleDelta, ZSTD(1)"},
	{Name: "updated_at", Type: "DateTime64(3)", Codec: "DoubleDelta, ZSTD(1)"},
}

// ParticipantStats holds one user's aggregate counters and last computed rank.
// Exactly one row exists per user: the table uses ReplacingMergeTree(updated_at)
// ORDER BY (user_id), so an upsert is an insert and deduplication keeps the
// row with the newest updated_at. Reads use FINAL to observe the merged view.
//
// Rank is 1-based and dense after a successful full recomputation; 0 means the
// row has never been ranked. Between a stats write and the next recomputation
// ranks are stale - the leaderboard is eventually consistent by design.
type ParticipantStats struct {
	UserID              string    `ch:"user_id" json:"userId"`
	CompletedGoals      uint64    `ch:"completed_goals" json:"completedGoals"`
	CompletedMilestones uint64    `ch:"completed_milestones" json:"completedMilestones"`
	TotalPoints         uint64    `ch:"total_points" json:"totalPoints"`
	StreakDays          uint64    `ch:"streak_days" json:"streakDays"`
	Rank                uint64    `ch:"rank" json:"rank"` // 0 = not yet ranked
	CreatedAt           time.Time `ch:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `ch:"updated_at" json:"updatedAt"`
}

// Ranked reports whether the row has been assigned a rank by a full
// recomputation since it was last created.
func (s *ParticipantStats) Ranked() bool {
	return s.Rank > 0
}

// Compare orders two rows for the leaderboard: descending lexicographic on
// (TotalPoints, CompletedGoals, CompletedMilestones, StreakDays), with user id
// ascending as the final tie-break so the total order is stable across reads.
// Returns a negative number when a ranks ahead of b, positive when behind,
// and never 0 for distinct users.
func Compare(a, b *ParticipantStats) int {
	if c := compareDesc(a.TotalPoints, b.TotalPoints); c != 0 {
		return c
	}
	if c := compareDesc(a.CompletedGoals, b.CompletedGoals); c != 0 {
		return c
	}
	if c := compareDesc(a.CompletedMilestones, b.CompletedMilestones); c != 0 {
		return c
	}
	if c := compareDesc(a.StreakDays, b.StreakDays); c != 0 {
		return c
	}
	switch {
	case a.UserID < b.UserID:
		return -1
	case a.UserID > b.UserID:
		return 1
	default:
		return 0
	}
}

func compareDesc(a, b uint64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

// ClampCounter converts an externally derived aggregate to a non-negative
// counter. The update path replaces counters wholesale from an upstream
// source that could itself be inconsistent, so the floor is enforced here
// rather than trusted to callers.
func ClampCounter(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}
