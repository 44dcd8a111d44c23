package leaderboard

import (
	"time"
)

const GoalsTableName = "goals"

// GoalColumns defines the schema for the goals table.
// Milestones are stored as two parallel arrays so the table stays flat;
// the store reassembles them into Milestone values on read.
var GoalColumns = []ColumnDef{
	{Name: "goal_id", Type: "String", Codec: "ZSTD(1)"},
	{Name: "user_id", Type: "String", Codec: "ZSTD(1)"},
	{Name: "title", Type: "String", Codec: "ZSTD(1)"},
	{Name: "points", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "completed", Type: "UInt8 DEFAULT 0"},
	{Name: "milestone_titles", Type: "Array(String)", Codec: "ZSTD(1)"},
	{Name: "milestone_completed", Type: "Array(UInt8)", Codec: "ZSTD(1)"},
	{Name: "updated_at", Type: "DateTime64(3)", Codec: "DoubleDelta, ZSTD(1)"},
}

// Milestone is a single step within a goal.
type Milestone struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Goal is the slice of the goal entity the ranking engine consumes: a points
// value, a completed flag, and the milestone list. Goal ownership and the rest
// of its lifecycle live elsewhere in the platform.
type Goal struct {
	GoalID     string      `json:"goalId"`
	UserID     string      `json:"userId"`
	Title      string      `json:"title"`
	Points     uint64      `json:"points"`
	Completed  bool        `json:"completed"`
	Milestones []Milestone `json:"milestones"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// CompletedMilestones counts the goal's milestones with the completed flag set.
func (g *Goal) CompletedMilestones() uint64 {
	var n uint64
	for _, m := range g.Milestones {
		if m.Completed {
			n++
		}
	}
	return n
}
