package leaderboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stridehub/strideboard/pkg/leaderboard"
)

func TestPageKey(t *testing.T) {
	assert.Equal(t, "leaderboard:page:1:size:25", leaderboard.PageKey(1, 25))
	assert.Equal(t, "leaderboard:page:3:size:100", leaderboard.PageKey(3, 100))
}

func TestCacheRoundTrip(t *testing.T) {
	store := newFakeCacheStore()
	cache := leaderboard.NewCache(store, zaptest.NewLogger(t))

	page := &leaderboard.Page{
		Entries: []leaderboard.Entry{{UserID: "alice", Rank: 1, TotalPoints: 90}},
		Pagination: leaderboard.Pagination{
			TotalEntries: 42,
			CurrentPage:  2,
			TotalPages:   2,
		},
	}

	cache.Set(context.Background(), 2, 25, page)

	got, ok := cache.Get(context.Background(), 2, 25)
	require.True(t, ok)
	require.Equal(t, page, got)
	// Totals live inside the entry, so hits stay accurate without a count query
	assert.Equal(t, uint64(42), got.Pagination.TotalEntries)
}

func TestCacheMiss(t *testing.T) {
	cache := leaderboard.NewCache(newFakeCacheStore(), zaptest.NewLogger(t))

	_, ok := cache.Get(context.Background(), 1, 25)
	assert.False(t, ok)
}

func TestCacheReadFailureIsAMiss(t *testing.T) {
	store := newFakeCacheStore()
	store.getErr = errors.New("connection refused")
	cache := leaderboard.NewCache(store, zaptest.NewLogger(t))

	_, ok := cache.Get(context.Background(), 1, 25)
	assert.False(t, ok, "transport failures must degrade to a miss, never an error")
}

func TestCacheWriteFailureIsSwallowed(t *testing.T) {
	store := newFakeCacheStore()
	store.setErr = errors.New("connection refused")
	cache := leaderboard.NewCache(store, zaptest.NewLogger(t))

	// Must not panic or surface the error
	cache.Set(context.Background(), 1, 25, &leaderboard.Page{})

	_, ok := cache.Get(context.Background(), 1, 25)
	assert.False(t, ok)
}

func TestInvalidateAll(t *testing.T) {
	store := newFakeCacheStore()
	cache := leaderboard.NewCache(store, zaptest.NewLogger(t))

	cache.Set(context.Background(), 1, 25, &leaderboard.Page{})
	cache.Set(context.Background(), 2, 25, &leaderboard.Page{})
	require.Len(t, store.entries, 2)

	cache.InvalidateAll(context.Background())
	assert.Empty(t, store.entries)

	// Invalidating an empty cache is a no-op
	cache.InvalidateAll(context.Background())
}

func TestInvalidateAllFailureIsSwallowed(t *testing.T) {
	store := newFakeCacheStore()
	store.delErr = errors.New("connection refused")
	cache := leaderboard.NewCache(store, zaptest.NewLogger(t))

	// Entries simply expire via TTL in this case
	cache.InvalidateAll(context.Background())
}

func TestNilStoreDisablesCache(t *testing.T) {
	cache := leaderboard.NewCache(nil, zaptest.NewLogger(t))

	cache.Set(context.Background(), 1, 25, &leaderboard.Page{})
	_, ok := cache.Get(context.Background(), 1, 25)
	assert.False(t, ok)
	cache.InvalidateAll(context.Background())
}
