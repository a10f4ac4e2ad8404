package breaker

import (
	"sort"
	"sync"

	"github.com/angelmondragon/dealerstock-backend/pkg/metrics"
)

// DatabaseBreakerName guards the shared database pool.
const DatabaseBreakerName = "database_operations"

// Registry holds named breakers so the health endpoint can report them all.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
	metrics  *metrics.BreakerMetrics
}

// NewRegistry constructs an empty registry.
func NewRegistry(m *metrics.BreakerMetrics) *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
		metrics:  m,
	}
}

// GetOrCreate returns the named breaker, creating it with the supplied
// settings on first use.
func (r *Registry) GetOrCreate(name string, settings Settings) *Breaker {
	r.mu.RLock()
	if b, ok := r.breakers[name]; ok {
		r.mu.RUnlock()
		return b
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := New(name, settings, r.metrics)
	r.breakers[name] = b
	return b
}

// Snapshots returns the state of every registered breaker, sorted by name.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Snapshot, 0, len(r.breakers))
	for _, b := range r.breakers {
		out = append(out, b.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
