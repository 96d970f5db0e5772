// Package cache implements the confirmation cache: a bounded, thread-safe,
// positive-only mapping from slot number to "confirmed".
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/0xkanth/solana-confirmation-service/internal/metrics"
)

// confirmed is the sentinel value stored for every key. The cache never
// stores "unconfirmed" — absence means "unknown", never "known unconfirmed".
// See the "positive-only" guarantee in the design notes.
type confirmed struct{}

// Cache is a bounded LRU set of confirmed slot numbers.
//
// All methods are safe for concurrent use by many goroutines. Reads update
// recency; writes update recency and, being idempotent, never change the
// stored value.
type Cache struct {
	lru     *lru.Cache[uint64, confirmed]
	metrics *metrics.Sink
}

// New creates a Cache with the given capacity. capacity must be positive.
func New(capacity int, sink *metrics.Sink) (*Cache, error) {
	l, err := lru.New[uint64, confirmed](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, metrics: sink}, nil
}

// Contains reports whether slot is known confirmed. Touches recency.
func (c *Cache) Contains(slot uint64) bool {
	_, ok := c.lru.Get(slot)
	if ok {
		c.metrics.CacheHits.Inc()
	} else {
		c.metrics.CacheMisses.Inc()
	}
	c.metrics.CacheSize.Set(float64(c.lru.Len()))
	return ok
}

// Insert marks slot as confirmed. Idempotent: inserting an already-present
// slot only refreshes its recency.
func (c *Cache) Insert(slot uint64) {
	c.lru.Add(slot, confirmed{})
	c.metrics.CacheSize.Set(float64(c.lru.Len()))
}

// InsertMany inserts a batch of slots, preserving order such that the last
// slot in the batch ends up most-recently-used.
func (c *Cache) InsertMany(slots []uint64) {
	for _, s := range slots {
		c.lru.Add(s, confirmed{})
	}
	c.metrics.CacheSize.Set(float64(c.lru.Len()))
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
