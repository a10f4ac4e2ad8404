package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"
	// Inbound ids longer than this are replaced rather than echoed into
	// logs and responses.
	maxRequestIDLen = 128
)

// RequestID echoes a usable inbound X-Request-Id or mints a uuid, and
// attaches it to the log context and the response.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" || len(reqID) > maxRequestIDLen {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
