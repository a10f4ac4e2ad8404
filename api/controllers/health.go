package controllers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/angelmondragon/dealerstock-backend/api/responses"
	"github.com/angelmondragon/dealerstock-backend/pkg/breaker"
	"github.com/angelmondragon/dealerstock-backend/pkg/cache"
	"github.com/angelmondragon/dealerstock-backend/pkg/config"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
)

// Service health statuses reported on /health.
const (
	HealthStatusHealthy   = "Healthy"
	HealthStatusDegraded  = "Degraded"
	HealthStatusUnhealthy = "Unhealthy"
)

// Database probe outcomes.
const (
	DatabaseUp       = "Up"
	DatabaseDegraded = "Degraded"
	DatabaseDown     = "Down"
)

// HealthDB is the slice of the database client the probe needs.
type HealthDB interface {
	AcquireConn(ctx context.Context) (*sql.Conn, error)
}

type healthResponse struct {
	Status          string    `json:"status"`
	Database        string    `json:"database"`
	DatabaseDetails string    `json:"database_details,omitempty"`
	ResponseTimeMs  int64     `json:"response_time_ms"`
	UptimeSeconds   int64     `json:"uptime_seconds"`
	Version         string    `json:"version"`
	Timestamp       time.Time `json:"timestamp"`
}

// Health runs the two-stage database probe. Stage one acquires a pool
// connection within the acquire timeout; stage two runs SELECT 1 within the
// query timeout. Timeouts degrade the status, hard errors mark it unhealthy.
// Healthy and Degraded return 200 so load balancers keep routing; only
// Unhealthy returns 503.
func Health(cfg *config.Config, dbClient HealthDB, logg *logger.Logger, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		database, details := probeDatabase(r.Context(), cfg, dbClient)

		status := HealthStatusHealthy
		httpStatus := http.StatusOK
		switch database {
		case DatabaseDegraded:
			status = HealthStatusDegraded
		case DatabaseDown:
			status = HealthStatusUnhealthy
			httpStatus = http.StatusServiceUnavailable
		}

		if status != HealthStatusHealthy && logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"health_status": status,
				"database":      database,
				"details":       details,
			})
			logg.Warn(ctx, "health.check_degraded")
		}

		payload := healthResponse{
			Status:          status,
			Database:        database,
			DatabaseDetails: details,
			ResponseTimeMs:  time.Since(start).Milliseconds(),
			UptimeSeconds:   int64(time.Since(startedAt).Seconds()),
			Version:         cfg.App.Version,
			Timestamp:       time.Now().UTC(),
		}

		responses.WriteSuccessStatus(w, httpStatus, payload)
	}
}

func probeDatabase(ctx context.Context, cfg *config.Config, dbClient HealthDB) (string, string) {
	if dbClient == nil {
		return DatabaseDown, "database client not configured"
	}

	acquireCtx, cancelAcquire := context.WithTimeout(ctx, cfg.DB.HealthCheckAcquireTimeout)
	defer cancelAcquire()

	conn, err := dbClient.AcquireConn(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return DatabaseDegraded, "connection pool exhausted"
		}
		return DatabaseDown, err.Error()
	}
	defer conn.Close()

	queryCtx, cancelQuery := context.WithTimeout(ctx, cfg.DB.HealthCheckTimeout)
	defer cancelQuery()

	var one int
	if err := conn.QueryRowContext(queryCtx, "SELECT 1").Scan(&one); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return DatabaseDegraded, "database under load"
		}
		return DatabaseDown, err.Error()
	}
	return DatabaseUp, ""
}

// HealthCircuitBreakers reports the state of every registered breaker.
func HealthCircuitBreakers(registry *breaker.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshots := []breaker.Snapshot{}
		if registry != nil {
			snapshots = registry.Snapshots()
		}
		responses.WriteSuccess(w, map[string]any{
			"circuit_breakers": snapshots,
			"timestamp":        time.Now().UTC(),
		})
	}
}

// HealthCache reports hit/miss counters for every registered cache.
func HealthCache(caches *cache.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := []cache.Stats{}
		if caches != nil {
			stats = caches.Stats()
		}
		responses.WriteSuccess(w, map[string]any{
			"caches":    stats,
			"timestamp": time.Now().UTC(),
		})
	}
}
