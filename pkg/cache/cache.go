// Package cache provides small in-process query caches with TTL and
// idle-based expiry, used to shave load off hot read paths.
package cache

import (
	"sync"
	"time"

	"github.com/angelmondragon/dealerstock-backend/pkg/metrics"
)

// Stats is a point-in-time view of a cache, exposed on the health endpoint.
type Stats struct {
	Name     string  `json:"name"`
	Entries  int     `json:"entries"`
	Capacity int     `json:"capacity"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
	lastAccess time.Time
}

// Cache is a capacity-bounded map with TTL expiry and optional idle (TTI)
// expiry. The zero TTI disables idle expiry.
type Cache[V any] struct {
	name     string
	capacity int
	ttl      time.Duration
	tti      time.Duration
	metrics  *metrics.CacheMetrics
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*entry[V]
	hits    int64
	misses  int64
}

// New constructs a named cache. Capacity must be positive; the oldest entry
// by last access is evicted when the cache is full.
func New[V any](name string, capacity int, ttl, tti time.Duration, m *metrics.CacheMetrics) *Cache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache[V]{
		name:     name,
		capacity: capacity,
		ttl:      ttl,
		tti:      tti,
		metrics:  m,
		now:      time.Now,
		entries:  make(map[string]*entry[V]),
	}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		c.miss()
		return zero, false
	}
	now := c.now()
	if c.expired(e, now) {
		delete(c.entries, key)
		c.publishEntries()
		c.miss()
		return zero, false
	}
	e.lastAccess = now
	c.hits++
	c.metrics.IncHit(c.name)
	return e.value, true
}

// Set stores value under key, evicting the least recently used entry when
// the cache is at capacity.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked(now)
	}
	c.entries[key] = &entry[V]{value: value, insertedAt: now, lastAccess: now}
	c.publishEntries()
}

// Invalidate removes the entry for key if present.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.publishEntries()
}

// InvalidateAll drops every entry.
func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
	c.publishEntries()
}

// Stats returns counters for reporting. Expired entries still resident are
// not counted.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	live := 0
	for _, e := range c.entries {
		if !c.expired(e, now) {
			live++
		}
	}
	total := c.hits + c.misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(c.hits) / float64(total)
	}
	return Stats{
		Name:     c.name,
		Entries:  live,
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
		HitRatio: ratio,
	}
}

func (c *Cache[V]) expired(e *entry[V], now time.Time) bool {
	if c.ttl > 0 && now.Sub(e.insertedAt) >= c.ttl {
		return true
	}
	if c.tti > 0 && now.Sub(e.lastAccess) >= c.tti {
		return true
	}
	return false
}

func (c *Cache[V]) evictOldestLocked(now time.Time) {
	var oldestKey string
	var oldestAccess time.Time
	first := true
	for key, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, key)
			return
		}
		if first || e.lastAccess.Before(oldestAccess) {
			oldestKey = key
			oldestAccess = e.lastAccess
			first = false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache[V]) miss() {
	c.misses++
	c.metrics.IncMiss(c.name)
}

func (c *Cache[V]) publishEntries() {
	c.metrics.SetEntries(c.name, float64(len(c.entries)))
}
