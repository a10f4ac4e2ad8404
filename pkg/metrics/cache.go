package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks hit/miss ratios per named cache.
type CacheMetrics struct {
	hits    *prometheus.CounterVec
	misses  *prometheus.CounterVec
	entries *prometheus.GaugeVec
}

// NewCacheMetrics registers the cache metrics on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "query_cache_hits_total",
		Help: "Cache hits by cache name.",
	}, []string{"cache"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "query_cache_misses_total",
		Help: "Cache misses by cache name.",
	}, []string{"cache"})
	entries := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "query_cache_entries",
		Help: "Live entries by cache name.",
	}, []string{"cache"})
	reg.MustRegister(hits, misses, entries)
	return &CacheMetrics{
		hits:    hits,
		misses:  misses,
		entries: entries,
	}
}

// IncHit counts a cache hit.
func (m *CacheMetrics) IncHit(cache string) {
	if m == nil || m.hits == nil {
		return
	}
	m.hits.WithLabelValues(normalizeLabel(cache)).Inc()
}

// IncMiss counts a cache miss.
func (m *CacheMetrics) IncMiss(cache string) {
	if m == nil || m.misses == nil {
		return
	}
	m.misses.WithLabelValues(normalizeLabel(cache)).Inc()
}

// SetEntries publishes the live entry count for the named cache.
func (m *CacheMetrics) SetEntries(cache string, count float64) {
	if m == nil || m.entries == nil {
		return
	}
	m.entries.WithLabelValues(normalizeLabel(cache)).Set(count)
}
