package cache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/0xkanth/solana-confirmation-service/internal/metrics"
)

func newTestCache(t *testing.T, capacity int) *Cache {
	t.Helper()
	sink := metrics.New(prometheus.NewRegistry())
	c, err := New(capacity, sink)
	require.NoError(t, err)
	return c
}

func TestCache_MissThenHit(t *testing.T) {
	c := newTestCache(t, 10)

	require.False(t, c.Contains(42))

	c.Insert(42)
	require.True(t, c.Contains(42))
}

func TestCache_PositiveOnly(t *testing.T) {
	c := newTestCache(t, 10)

	// Absence means "unknown", never "known unconfirmed" -- querying an
	// uninserted slot repeatedly must never start returning true on its own.
	require.False(t, c.Contains(1))
	require.False(t, c.Contains(1))
}

func TestCache_InsertIdempotent(t *testing.T) {
	c := newTestCache(t, 10)

	c.Insert(7)
	c.Insert(7)
	require.Equal(t, 1, c.Len())
}

func TestCache_InsertManyAndEviction(t *testing.T) {
	c := newTestCache(t, 2)

	c.InsertMany([]uint64{1, 2, 3})

	require.Equal(t, 2, c.Len())
	// Oldest entry (1) should have been evicted under LRU pressure.
	require.False(t, c.Contains(1))
	require.True(t, c.Contains(3))
}

func TestCache_LRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := newTestCache(t, 2)

	c.Insert(1)
	c.Insert(2)
	// Touch 1 so it becomes most-recently-used.
	require.True(t, c.Contains(1))

	c.Insert(3) // should evict 2, not 1

	require.True(t, c.Contains(1))
	require.False(t, c.Contains(2))
	require.True(t, c.Contains(3))
}
