package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestLoggingSetsResponseTimeHeader(t *testing.T) {
	handler := Logging(newTestLogger(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cars", nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d", w.Code)
	}
	raw := w.Header().Get("X-Response-Time-Ms")
	if raw == "" {
		t.Fatalf("expected X-Response-Time-Ms header")
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		t.Fatalf("response time header not numeric: %q", raw)
	}
}

func TestLoggingDefaultsStatusOnImplicitWrite(t *testing.T) {
	handler := Logging(newTestLogger(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	if w.Header().Get("X-Response-Time-Ms") == "" {
		t.Fatalf("expected response time header on implicit 200")
	}
}

func TestInflightTrackerCountsAndDrains(t *testing.T) {
	tracker := NewInflightTracker(nil)

	release := make(chan struct{})
	started := make(chan struct{})
	handler := tracker.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}()

	<-started
	if got := tracker.Count(); got != 1 {
		t.Fatalf("expected 1 in flight, got %d", got)
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if remaining := tracker.Drain(drainCtx, 10*time.Millisecond); remaining != 1 {
		t.Fatalf("expected drain to report the stuck request, got %d", remaining)
	}

	close(release)
	wg.Wait()

	drainCtx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	if remaining := tracker.Drain(drainCtx2, 10*time.Millisecond); remaining != 0 {
		t.Fatalf("expected clean drain, got %d", remaining)
	}
}
