package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/dealerstock-backend/pkg/errors"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
	"github.com/angelmondragon/dealerstock-backend/pkg/pagination"
	"github.com/angelmondragon/dealerstock-backend/pkg/types"
)

const errorIDHeader = "X-Error-Id"

// debugDetails switches the error writer from Safe to Debug exposure. In Safe
// mode only details the code's metadata explicitly allows are returned.
var debugDetails atomic.Bool

// SetDebugDetails toggles Debug exposure for error payloads. Call once at
// startup from the feature flag; never enable in production.
func SetDebugDetails(enabled bool) {
	debugDetails.Store(enabled)
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

func WritePaginated(w http.ResponseWriter, data any, meta pagination.Meta) {
	writeJSON(w, http.StatusOK, types.PaginatedEnvelope{Data: data, Pagination: meta})
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	// Safe mode speaks only in the code's public message. Internal messages
	// can name quantities, IDs and schema details.
	msg := meta.PublicMessage
	if debugDetails.Load() {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	errorID := uuid.NewString()

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:          string(typed.Code()),
			Message:       msg,
			ErrorID:       errorID,
			RequestID:     logger.RequestIDFromContext(ctx),
			Documentation: meta.Documentation,
			Timestamp:     time.Now().UTC(),
		},
	}

	if details := typed.Details(); details != nil {
		if meta.DetailsAllowed || debugDetails.Load() {
			payload.Error.Details = details
		}
	}
	if debugDetails.Load() && payload.Error.Details == nil {
		if cause := typed.Unwrap(); cause != nil {
			payload.Error.Details = map[string]any{"cause": cause.Error()}
		}
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)

		fields := map[string]any{
			"error":         dump.TopMessage,
			"error_code":    dump.Code,
			"error_id":      errorID,
			"error_chain":   dump.Chain,
			"pg_code":       dump.PGCode,
			"pg_detail":     dump.PGDetail,
			"pg_message":    dump.PGMessage,
			"pg_table":      dump.PGTable,
			"pg_column":     dump.PGColumn,
			"pg_constraint": dump.PGConstraint,
		}

		ctx = logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.error")
		}
	}

	w.Header().Set(errorIDHeader, errorID)
	if typed.Code() == pkgerrors.CodeRateLimit {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(typed)))
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func retryAfterSeconds(err *pkgerrors.Error) int {
	if details, ok := err.Details().(map[string]any); ok {
		switch v := details["retry_after_seconds"].(type) {
		case int:
			if v > 0 {
				return v
			}
		case int64:
			if v > 0 {
				return int(v)
			}
		case float64:
			if v > 0 {
				return int(v)
			}
		}
	}
	return 1
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
