package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/dealerstock-backend/pkg/errors"
	"github.com/angelmondragon/dealerstock-backend/pkg/pagination"
	"github.com/angelmondragon/dealerstock-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWritePaginated(t *testing.T) {
	w := httptest.NewRecorder()
	meta := pagination.MetaFor(pagination.Params{Page: 2, PageSize: 10}, 35)
	WritePaginated(w, []string{"a", "b"}, meta)

	var body types.PaginatedEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode paginated envelope: %v", err)
	}
	if body.Pagination.TotalItems != 35 {
		t.Fatalf("unexpected total %d", body.Pagination.TotalItems)
	}
	if body.Pagination.TotalPages != 4 {
		t.Fatalf("unexpected total pages %d", body.Pagination.TotalPages)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}
	if w.Header().Get("X-Error-Id") == "" {
		t.Fatalf("expected X-Error-Id header")
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Details == nil {
		t.Fatalf("expected details in public payload")
	}
	if body.Error.ErrorID != w.Header().Get("X-Error-Id") {
		t.Fatalf("error_id should match the response header")
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Details != nil {
		t.Fatalf("details should be omitted for internal errors")
	}
	if body.Error.Message != "internal server error" {
		t.Fatalf("internal messages must not leak: %q", body.Error.Message)
	}
}

func TestWriteErrorHidesDomainInternals(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested 7 units but only 2 available").
		WithDetails(map[string]any{"requested": 7, "available": 2})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusConflict {
		t.Fatalf("expected status 409 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Message != "insufficient stock" {
		t.Fatalf("internal messages must not leak: %q", body.Error.Message)
	}
	if body.Error.Details != nil {
		t.Fatalf("stock counts must not leak: %v", body.Error.Details)
	}
}

func TestWriteErrorSetsRetryAfterOnRateLimit(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded").
		WithDetails(map[string]any{"retry_after_seconds": 7})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusTooManyRequests {
		t.Fatalf("expected status 429 but got %d", got)
	}
	if got := w.Header().Get("Retry-After"); got != "7" {
		t.Fatalf("expected Retry-After 7, got %q", got)
	}
}

func TestWriteErrorDebugModeExposesCause(t *testing.T) {
	SetDebugDetails(true)
	defer SetDebugDetails(false)

	w := httptest.NewRecorder()
	cause := errors.New("connection refused")
	WriteError(context.Background(), nil, w, pkgerrors.Wrap(pkgerrors.CodeDatabase, cause, "query failed"))

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	details, ok := body.Error.Details.(map[string]any)
	if !ok || details["cause"] != "connection refused" {
		t.Fatalf("expected cause in debug details, got %v", body.Error.Details)
	}
}
