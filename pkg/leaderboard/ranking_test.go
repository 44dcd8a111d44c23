package leaderboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	leaderboardmodels "github.com/stridehub/strideboard/pkg/db/models/leaderboard"
	"github.com/stridehub/strideboard/pkg/leaderboard"
)

func TestRecalculateAllAssignsDenseRanks(t *testing.T) {
	store := &mockStatsStore{}
	rows := []*leaderboardmodels.ParticipantStats{
		{UserID: "alice", TotalPoints: 80},
		{UserID: "bob", TotalPoints: 80},
		{UserID: "carol", TotalPoints: 50},
	}
	store.On("QueryAllSorted", mock.Anything).Return(rows, nil)
	store.On("UpdateRanks", mock.Anything, rows).Return(nil)

	engine := leaderboard.NewEngine(store, zaptest.NewLogger(t))

	ranked, err := engine.RecalculateAll(context.Background())
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	// Ranks are dense and 1-based: tied scores still occupy consecutive
	// positions, so the third user is rank 3, not rank 2.
	assert.Equal(t, uint64(1), ranked[0].Rank)
	assert.Equal(t, uint64(2), ranked[1].Rank)
	assert.Equal(t, uint64(3), ranked[2].Rank)
	store.AssertExpectations(t)
}

func TestRecalculateAllEmptyStore(t *testing.T) {
	store := &mockStatsStore{}
	store.On("QueryAllSorted", mock.Anything).Return([]*leaderboardmodels.ParticipantStats{}, nil)

	engine := leaderboard.NewEngine(store, zaptest.NewLogger(t))

	ranked, err := engine.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ranked)
	store.AssertNotCalled(t, "UpdateRanks", mock.Anything, mock.Anything)
}

func TestRecalculateAllPropagatesStoreErrors(t *testing.T) {
	store := &mockStatsStore{}
	store.On("QueryAllSorted", mock.Anything).Return(nil, errors.New("clickhouse unavailable"))

	engine := leaderboard.NewEngine(store, zaptest.NewLogger(t))

	_, err := engine.RecalculateAll(context.Background())
	require.Error(t, err)
}

func TestSortStats(t *testing.T) {
	rows := []*leaderboardmodels.ParticipantStats{
		{UserID: "carol", TotalPoints: 50},
		{UserID: "bob", TotalPoints: 80, CompletedGoals: 1},
		{UserID: "alice", TotalPoints: 80, CompletedGoals: 4},
	}

	leaderboard.SortStats(rows)

	assert.Equal(t, "alice", rows[0].UserID)
	assert.Equal(t, "bob", rows[1].UserID)
	assert.Equal(t, "carol", rows[2].UserID)
}

func TestComputePage(t *testing.T) {
	sorted := make([]*leaderboardmodels.ParticipantStats, 12)
	for i := range sorted {
		sorted[i] = &leaderboardmodels.ParticipantStats{
			UserID: string(rune('a' + i)),
			Rank:   uint64(i + 1),
		}
	}

	tests := []struct {
		name        string
		pageIndex   int
		pageSize    int
		wantLen     int
		wantFirst   string
		wantPages   int
		wantCurrent int
	}{
		{
			name:      "first page full",
			pageIndex: 1, pageSize: 10,
			wantLen: 10, wantFirst: "a", wantPages: 2, wantCurrent: 1,
		},
		{
			name:      "last page short",
			pageIndex: 2, pageSize: 10,
			wantLen: 2, wantFirst: "k", wantPages: 2, wantCurrent: 2,
		},
		{
			name:      "page past the end is empty, not an error",
			pageIndex: 5, pageSize: 10,
			wantLen: 0, wantPages: 2, wantCurrent: 5,
		},
		{
			name:      "single row pages",
			pageIndex: 12, pageSize: 1,
			wantLen: 1, wantFirst: "l", wantPages: 12, wantCurrent: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := leaderboard.ComputePage(sorted, tt.pageIndex, tt.pageSize)
			require.Len(t, page.Entries, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, page.Entries[0].UserID)
			}
			assert.Equal(t, uint64(12), page.Pagination.TotalEntries)
			assert.Equal(t, tt.wantPages, page.Pagination.TotalPages)
			assert.Equal(t, tt.wantCurrent, page.Pagination.CurrentPage)
		})
	}
}
