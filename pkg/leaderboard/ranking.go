package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	leaderboardmodels "github.com/stridehub/strideboard/pkg/db/models/leaderboard"
	"github.com/stridehub/strideboard/pkg/db/stats"
)

// Engine imposes the leaderboard total order over all participant rows and
// assigns dense 1-based ranks.
type Engine struct {
	stats  stats.Store
	logger *zap.Logger
}

// NewEngine returns a ranking engine over the given stats store.
func NewEngine(store stats.Store, logger *zap.Logger) *Engine {
	return &Engine{
		stats:  store,
		logger: logger,
	}
}

// RecalculateAll fetches every row in leaderboard order, assigns rank =
// position (1-based), and persists the result as one batch. Returns the
// re-ranked rows in order.
//
// The batch write is not atomic across merges with concurrent recomputations;
// the pass that writes last wins wholesale. A failed pass leaves previous
// ranks in place and is retried on the next trigger, so transient staleness
// self-heals.
func (e *Engine) RecalculateAll(ctx context.Context) ([]*leaderboardmodels.ParticipantStats, error) {
	rows, err := e.stats.QueryAllSorted(ctx)
	if err != nil {
		return nil, fmt.Errorf("recalculate ranks: %w", err)
	}

	for i, row := range rows {
		row.Rank = uint64(i + 1)
	}

	if len(rows) > 0 {
		if err := e.stats.UpdateRanks(ctx, rows); err != nil {
			return nil, fmt.Errorf("persist ranks: %w", err)
		}
	}

	e.logger.Debug("Recalculated leaderboard ranks", zap.Int("participants", len(rows)))
	return rows, nil
}

// SortStats orders rows in place by the leaderboard total order. Used when a
// full set is already in memory and the store-side ordering is unavailable.
func SortStats(rows []*leaderboardmodels.ParticipantStats) {
	sort.SliceStable(rows, func(i, j int) bool {
		return leaderboardmodels.Compare(rows[i], rows[j]) < 0
	})
}

// ComputePage slices one page out of a fully ordered list. pageIndex is
// 1-based; an index past the last page yields an empty page, not an error.
func ComputePage(sorted []*leaderboardmodels.ParticipantStats, pageIndex, pageSize int) Page {
	total := len(sorted)
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	start := (pageIndex - 1) * pageSize
	end := start + pageSize
	if start < 0 || start >= total {
		start, end = 0, 0
	} else if end > total {
		end = total
	}

	return Page{
		Entries: EntriesFromStats(sorted[start:end]),
		Pagination: Pagination{
			TotalEntries: uint64(total),
			CurrentPage:  pageIndex,
			TotalPages:   totalPages,
		},
	}
}
