// Package breaker provides an in-process circuit breaker used to guard
// database operations during degradation.
package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/dealerstock-backend/pkg/errors"
	"github.com/angelmondragon/dealerstock-backend/pkg/metrics"
)

// State is the breaker lifecycle state.
type State string

const (
	StateClosed   State = "Closed"
	StateOpen     State = "Open"
	StateHalfOpen State = "HalfOpen"
)

func (s State) String() string { return string(s) }

func (s State) gaugeValue() float64 {
	switch s {
	case StateOpen:
		return 1
	case StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// Settings tunes the failure and recovery thresholds of a breaker.
type Settings struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxCalls int
}

// DefaultSettings balances fast failure with reasonable recovery probes.
func DefaultSettings() Settings {
	return Settings{
		FailureThreshold: 5,
		SuccessThreshold: 3,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// AggressiveSettings trips early and retries quickly.
func AggressiveSettings() Settings {
	return Settings{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      10 * time.Second,
		HalfOpenMaxCalls: 2,
	}
}

// RelaxedSettings tolerates more failures before opening.
func RelaxedSettings() Settings {
	return Settings{
		FailureThreshold: 10,
		SuccessThreshold: 5,
		OpenTimeout:      60 * time.Second,
		HalfOpenMaxCalls: 5,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = def.FailureThreshold
	}
	if s.SuccessThreshold <= 0 {
		s.SuccessThreshold = def.SuccessThreshold
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = def.OpenTimeout
	}
	if s.HalfOpenMaxCalls <= 0 {
		s.HalfOpenMaxCalls = def.HalfOpenMaxCalls
	}
	return s
}

// Snapshot is a point-in-time view of breaker counters, exposed on the
// health endpoint.
type Snapshot struct {
	Name             string     `json:"name"`
	State            State      `json:"state"`
	ConsecutiveFails int        `json:"consecutive_failures"`
	TotalCalls       int64      `json:"total_calls"`
	TotalFailures    int64      `json:"total_failures"`
	TotalSuccesses   int64      `json:"total_successes"`
	RejectedCalls    int64      `json:"rejected_calls"`
	LastTransition   *time.Time `json:"last_transition,omitempty"`
}

// Breaker implements the Closed/Open/HalfOpen state machine. The protected
// operation runs outside the internal lock so slow calls never serialize.
type Breaker struct {
	name     string
	settings Settings
	metrics  *metrics.BreakerMetrics
	now      func() time.Time

	mu               sync.Mutex
	state            State
	consecutiveFails int
	halfOpenCalls    int
	halfOpenSuccess  int
	openedAt         time.Time
	lastTransition   *time.Time
	totalCalls       int64
	totalFailures    int64
	totalSuccesses   int64
	rejectedCalls    int64
}

// New constructs a breaker with the given settings. Zero-value settings
// fields fall back to the defaults.
func New(name string, settings Settings, m *metrics.BreakerMetrics) *Breaker {
	return &Breaker{
		name:     name,
		settings: settings.withDefaults(),
		metrics:  m,
		now:      time.Now,
		state:    StateClosed,
	}
}

// Name returns the breaker identifier.
func (b *Breaker) Name() string { return b.name }

// Do runs op under breaker protection. When the breaker is open and the
// recovery timeout has not elapsed, op is rejected without running.
func (b *Breaker) Do(ctx context.Context, op func(context.Context) error) error {
	if err := b.beforeCall(); err != nil {
		return err
	}
	err := op(ctx)
	b.afterCall(err)
	return err
}

func (b *Breaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.state == StateOpen {
		if now.Sub(b.openedAt) < b.settings.OpenTimeout {
			b.rejectedCalls++
			b.metrics.IncRejected(b.name)
			return errors.New(errors.CodeUnavailable, "circuit breaker %s is open", b.name)
		}
		b.transitionLocked(StateHalfOpen, now)
	}
	if b.state == StateHalfOpen {
		if b.halfOpenCalls >= b.settings.HalfOpenMaxCalls {
			b.rejectedCalls++
			b.metrics.IncRejected(b.name)
			return errors.New(errors.CodeUnavailable, "circuit breaker %s is probing recovery", b.name)
		}
		b.halfOpenCalls++
	}
	b.totalCalls++
	return nil
}

func (b *Breaker) afterCall(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if err != nil {
		b.totalFailures++
		b.consecutiveFails++
		switch b.state {
		case StateHalfOpen:
			// Any failure while probing re-opens immediately.
			b.transitionLocked(StateOpen, now)
		case StateClosed:
			if b.consecutiveFails >= b.settings.FailureThreshold {
				b.transitionLocked(StateOpen, now)
			}
		}
		return
	}

	b.totalSuccesses++
	b.consecutiveFails = 0
	if b.state == StateHalfOpen {
		b.halfOpenSuccess++
		if b.halfOpenSuccess >= b.settings.SuccessThreshold {
			b.transitionLocked(StateClosed, now)
		}
	}
}

func (b *Breaker) transitionLocked(to State, now time.Time) {
	b.state = to
	transition := now
	b.lastTransition = &transition
	switch to {
	case StateOpen:
		b.openedAt = now
	case StateHalfOpen, StateClosed:
		b.halfOpenCalls = 0
		b.halfOpenSuccess = 0
	}
	if to == StateClosed {
		b.consecutiveFails = 0
	}
	b.metrics.SetState(b.name, to.gaugeValue())
	b.metrics.IncTransition(b.name, string(to))
}

// State returns the current state, applying the lazy open-to-half-open
// transition when the recovery timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.OpenTimeout {
		return StateHalfOpen
	}
	return b.state
}

// Snapshot returns the current counters for reporting.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.state
	if state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.OpenTimeout {
		state = StateHalfOpen
	}
	return Snapshot{
		Name:             b.name,
		State:            state,
		ConsecutiveFails: b.consecutiveFails,
		TotalCalls:       b.totalCalls,
		TotalFailures:    b.totalFailures,
		TotalSuccesses:   b.totalSuccesses,
		RejectedCalls:    b.rejectedCalls,
		LastTransition:   b.lastTransition,
	}
}
