package cache

import "sort"

// Names of the standing query caches.
const (
	DashboardStatsCache = "dashboard_stats"
	CarByIDCache        = "car_by_id"
	LowStockCache       = "low_stock"
	DepreciationCache   = "depreciation"
)

// GlobalKey is the key used by caches holding a single aggregate result.
const GlobalKey = "global"

// StatsProvider is implemented by every cache regardless of value type.
type StatsProvider interface {
	Stats() Stats
	InvalidateAll()
}

// Registry collects the standing caches so the health endpoint can report
// and flush them together.
type Registry struct {
	providers map[string]StatsProvider
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]StatsProvider)}
}

// Register adds a cache under its name. Later registrations replace earlier
// ones.
func (r *Registry) Register(name string, p StatsProvider) {
	r.providers[name] = p
}

// Stats returns per-cache counters sorted by name.
func (r *Registry) Stats() []Stats {
	out := make([]Stats, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p.Stats())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// InvalidateAll flushes every registered cache.
func (r *Registry) InvalidateAll() {
	for _, p := range r.providers {
		p.InvalidateAll()
	}
}

// InvalidateCar evicts the car's own entry plus the aggregates derived
// from car rows. Threshold-keyed and global caches are flushed whole.
func (r *Registry) InvalidateCar(id string) {
	if p, ok := r.providers[CarByIDCache]; ok {
		if ki, ok := p.(interface{ Invalidate(string) }); ok {
			ki.Invalidate(id)
		}
	}
	for _, name := range []string{DashboardStatsCache, LowStockCache} {
		if p, ok := r.providers[name]; ok {
			p.InvalidateAll()
		}
	}
}

// InvalidateAllCars purges every standing cache.
func (r *Registry) InvalidateAllCars() {
	r.InvalidateAll()
}
