package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BreakerMetrics tracks circuit breaker activity per breaker name.
type BreakerMetrics struct {
	state       *prometheus.GaugeVec
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

// NewBreakerMetrics registers the breaker metrics on the provided registerer.
func NewBreakerMetrics(reg prometheus.Registerer) *BreakerMetrics {
	if reg == nil {
		return &BreakerMetrics{}
	}
	state := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current breaker state (0 closed, 1 open, 2 half-open).",
	}, []string{"breaker"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_transitions_total",
		Help: "State transitions by breaker and target state.",
	}, []string{"breaker", "to"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_rejected_total",
		Help: "Calls rejected without reaching the protected operation.",
	}, []string{"breaker"})
	reg.MustRegister(state, transitions, rejected)
	return &BreakerMetrics{
		state:       state,
		transitions: transitions,
		rejected:    rejected,
	}
}

// SetState publishes the numeric state for the named breaker.
func (m *BreakerMetrics) SetState(breaker string, state float64) {
	if m == nil || m.state == nil {
		return
	}
	m.state.WithLabelValues(normalizeLabel(breaker)).Set(state)
}

// IncTransition counts a transition into the given state.
func (m *BreakerMetrics) IncTransition(breaker, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(breaker), normalizeLabel(to)).Inc()
}

// IncRejected counts a fast-failed call.
func (m *BreakerMetrics) IncRejected(breaker string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(breaker)).Inc()
}
