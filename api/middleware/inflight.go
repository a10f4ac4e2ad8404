package middleware

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/dealerstock-backend/pkg/metrics"
)

// InflightTracker counts requests currently being served so shutdown can
// drain them before the process exits.
type InflightTracker struct {
	count       atomic.Int64
	httpMetrics *metrics.HTTPMetrics
}

func NewInflightTracker(httpMetrics *metrics.HTTPMetrics) *InflightTracker {
	return &InflightTracker{httpMetrics: httpMetrics}
}

// Count returns the number of requests in flight right now.
func (t *InflightTracker) Count() int64 {
	return t.count.Load()
}

// Drain polls until no requests are in flight or the context expires. It
// returns the remaining count, zero on a clean drain.
func (t *InflightTracker) Drain(ctx context.Context, pollInterval time.Duration) int64 {
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		remaining := t.count.Load()
		if remaining == 0 {
			return 0
		}
		select {
		case <-ctx.Done():
			return remaining
		case <-ticker.C:
		}
	}
}

// Middleware wraps handlers with the in-flight counter and gauge.
func (t *InflightTracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.count.Add(1)
		t.httpMetrics.IncInFlight()
		defer func() {
			t.count.Add(-1)
			t.httpMetrics.DecInFlight()
		}()
		next.ServeHTTP(w, r)
	})
}
