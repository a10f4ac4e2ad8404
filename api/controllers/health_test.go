package controllers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerstock-backend/pkg/breaker"
	"github.com/angelmondragon/dealerstock-backend/pkg/cache"
	"github.com/angelmondragon/dealerstock-backend/pkg/config"
	"github.com/angelmondragon/dealerstock-backend/pkg/types"
)

type sqliteHealthDB struct {
	db *sql.DB
}

func (s *sqliteHealthDB) AcquireConn(ctx context.Context) (*sql.Conn, error) {
	return s.db.Conn(ctx)
}

type failingHealthDB struct {
	err error
}

func (f *failingHealthDB) AcquireConn(ctx context.Context) (*sql.Conn, error) {
	return nil, f.err
}

func newHealthConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Version: "1.2.3"},
		DB: config.DBConfig{
			HealthCheckTimeout:        time.Second,
			HealthCheckAcquireTimeout: 500 * time.Millisecond,
		},
	}
}

func newSQLiteHealthDB(t *testing.T) *sqliteHealthDB {
	t.Helper()
	dsn := fmt.Sprintf("file:health_%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("unwrapping sql.DB: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return &sqliteHealthDB{db: sqlDB}
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode health envelope: %v", err)
	}
	payload, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected health payload %v", envelope.Data)
	}
	return payload
}

func TestHealthReportsHealthyDatabase(t *testing.T) {
	started := time.Now().Add(-90 * time.Second)
	handler := Health(newHealthConfig(), newSQLiteHealthDB(t), newTestLogger(), started)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	payload := decodeHealth(t, rec)
	if payload["status"] != HealthStatusHealthy {
		t.Fatalf("unexpected status %v", payload["status"])
	}
	if payload["database"] != DatabaseUp {
		t.Fatalf("unexpected database state %v", payload["database"])
	}
	if payload["version"] != "1.2.3" {
		t.Fatalf("unexpected version %v", payload["version"])
	}
	if uptime, ok := payload["uptime_seconds"].(float64); !ok || uptime < 89 {
		t.Fatalf("unexpected uptime %v", payload["uptime_seconds"])
	}
}

func TestHealthReportsUnhealthyOnConnectionError(t *testing.T) {
	handler := Health(newHealthConfig(), &failingHealthDB{err: errors.New("connection refused")}, newTestLogger(), time.Now())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	payload := decodeHealth(t, rec)
	if payload["status"] != HealthStatusUnhealthy {
		t.Fatalf("unexpected status %v", payload["status"])
	}
	if payload["database"] != DatabaseDown {
		t.Fatalf("unexpected database state %v", payload["database"])
	}
}

func TestHealthReportsDegradedOnPoolExhaustion(t *testing.T) {
	handler := Health(newHealthConfig(), &failingHealthDB{err: context.DeadlineExceeded}, newTestLogger(), time.Now())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("degraded must still return 200, got %d", rec.Code)
	}
	payload := decodeHealth(t, rec)
	if payload["status"] != HealthStatusDegraded {
		t.Fatalf("unexpected status %v", payload["status"])
	}
	if payload["database_details"] != "connection pool exhausted" {
		t.Fatalf("unexpected details %v", payload["database_details"])
	}
}

func TestHealthCircuitBreakersListsRegistered(t *testing.T) {
	registry := breaker.NewRegistry(nil)
	registry.GetOrCreate("database_operations", breaker.DefaultSettings())

	rec := httptest.NewRecorder()
	HealthCircuitBreakers(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/circuit-breakers", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	data := envelope.Data.(map[string]any)
	breakers, ok := data["circuit_breakers"].([]any)
	if !ok || len(breakers) != 1 {
		t.Fatalf("expected one breaker snapshot, got %v", data["circuit_breakers"])
	}
}

func TestHealthCacheHandlesNilRegistry(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCache(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/cache", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthCacheReportsStats(t *testing.T) {
	registry := cache.NewRegistry()
	c := cache.New[string]("car_by_id", 10, time.Minute, 0, nil)
	registry.Register("car_by_id", c)
	c.Set("C1001", "cached")
	c.Get("C1001")
	c.Get("C9999")

	rec := httptest.NewRecorder()
	HealthCache(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/cache", nil))

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	data := envelope.Data.(map[string]any)
	stats, ok := data["caches"].([]any)
	if !ok || len(stats) != 1 {
		t.Fatalf("expected one cache entry, got %v", data["caches"])
	}
}
