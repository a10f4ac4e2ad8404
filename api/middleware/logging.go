package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
	"github.com/angelmondragon/dealerstock-backend/pkg/metrics"
)

const responseTimeHeader = "X-Response-Time-Ms"

type statusRecorder struct {
	http.ResponseWriter
	status int
	start  time.Time
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
		r.Header().Set(responseTimeHeader, strconv.FormatInt(time.Since(r.start).Milliseconds(), 10))
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

// Logging emits request start/complete log lines and stamps the response
// time header. Completion severity follows the status class: 5xx logs at
// error, 4xx at warn, everything else at info.
func Logging(logg *logger.Logger, httpMetrics *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"method": r.Method,
					"path":   r.URL.Path,
				})
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, start: start}

			if logg != nil {
				logg.Debug(ctx, "request.start")
			}

			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			elapsed := time.Since(start)
			if httpMetrics != nil {
				httpMetrics.ObserveRequest(r.Method, r.URL.Path, rec.status, elapsed)
			}

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"status":      rec.status,
					"duration_ms": elapsed.Milliseconds(),
				})
				switch {
				case rec.status >= http.StatusInternalServerError:
					logg.Error(ctx, "request.complete", nil)
				case rec.status >= http.StatusBadRequest:
					logg.Warn(ctx, "request.complete")
				default:
					logg.Info(ctx, "request.complete")
				}
			}
		})
	}
}
