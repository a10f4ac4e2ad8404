package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/dealerstock-backend/pkg/config"
)

// CORS returns middleware that applies the configured origin policy. A
// wildcard origin disables credentials per the fetch spec.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	allowCredentials := cfg.AllowCredentials && !cfg.AllowsAnyOrigin()
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id", "X-Tenant-Id", "X-User-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Error-Id", "X-Response-Time-Ms"},
		AllowCredentials: allowCredentials,
		MaxAge:           cfg.MaxAgeSeconds,
	}).Handler
}
