package leaderboard

import (
	leaderboardmodels "github.com/stridehub/strideboard/pkg/db/models/leaderboard"
)

// Entry is the per-user view object served on leaderboard pages.
type Entry struct {
	UserID              string `json:"userId"`
	Rank                uint64 `json:"rank"`
	CompletedGoals      uint64 `json:"completedGoals"`
	CompletedMilestones uint64 `json:"completedMilestones"`
	TotalPoints         uint64 `json:"totalPoints"`
	StreakDays          uint64 `json:"streakDays"`
}

// Pagination carries the totals clients need to drive paging UI. It is
// accurate on cache misses and cached alongside the page so hits stay
// accurate too.
type Pagination struct {
	TotalEntries uint64 `json:"totalEntries"`
	CurrentPage  int    `json:"currentPage"`
	TotalPages   int    `json:"totalPages"`
}

// Page is one leaderboard page plus its pagination metadata. This is also
// the cache entry shape: entries and totals live and die together.
type Page struct {
	Entries    []Entry    `json:"leaderboard"`
	Pagination Pagination `json:"pagination"`
}

// Position is the result of a single-user position lookup.
type Position struct {
	UserPosition uint64 `json:"userPosition"`
	UserEntry    Entry  `json:"userEntry"`
}

// EntryFromStats converts a stored row into the served view object.
func EntryFromStats(s *leaderboardmodels.ParticipantStats) Entry {
	return Entry{
		UserID:              s.UserID,
		Rank:                s.Rank,
		CompletedGoals:      s.CompletedGoals,
		CompletedMilestones: s.CompletedMilestones,
		TotalPoints:         s.TotalPoints,
		StreakDays:          s.StreakDays,
	}
}

// EntriesFromStats converts stored rows into view objects, preserving order.
func EntriesFromStats(rows []*leaderboardmodels.ParticipantStats) []Entry {
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, EntryFromStats(r))
	}
	return entries
}
