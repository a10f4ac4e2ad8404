package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
)

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "middleware-test", Level: zerolog.Disabled, Output: io.Discard})
}

func TestRequestIDEchoesInboundHeader(t *testing.T) {
	handler := RequestID(newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-request-id", "req-abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "req-abc" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestRequestIDMintsUUIDWhenAbsent(t *testing.T) {
	var seen string
	handler := RequestID(newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	header := w.Header().Get("X-Request-Id")
	if _, err := uuid.Parse(header); err != nil {
		t.Fatalf("expected a uuid request id, got %q", header)
	}
	if seen != header {
		t.Fatalf("context id %q should match header %q", seen, header)
	}
}

func TestRequestIDReplacesOversizedHeader(t *testing.T) {
	handler := RequestID(newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-request-id", strings.Repeat("a", maxRequestIDLen+1))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if _, err := uuid.Parse(w.Header().Get("X-Request-Id")); err != nil {
		t.Fatalf("expected oversized id to be replaced with a uuid, got %q", w.Header().Get("X-Request-Id"))
	}
}

func TestIdentityAttachesHeadersToContext(t *testing.T) {
	var userID, tenantID string
	handler := Identity(newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID = UserIDFromContext(r.Context())
		tenantID = TenantIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-user-id", "user-1")
	req.Header.Set("x-tenant-id", "tenant-9")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if userID != "user-1" || tenantID != "tenant-9" {
		t.Fatalf("unexpected identity %q/%q", userID, tenantID)
	}
}
