package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/dealerstock-backend/api/controllers"
	"github.com/angelmondragon/dealerstock-backend/api/middleware"
	carsvc "github.com/angelmondragon/dealerstock-backend/internal/cars"
	inventorysvc "github.com/angelmondragon/dealerstock-backend/internal/inventory"
	reservationsvc "github.com/angelmondragon/dealerstock-backend/internal/reservations"
	salesvc "github.com/angelmondragon/dealerstock-backend/internal/sales"
	warehousesvc "github.com/angelmondragon/dealerstock-backend/internal/warehouses"
	"github.com/angelmondragon/dealerstock-backend/pkg/breaker"
	"github.com/angelmondragon/dealerstock-backend/pkg/cache"
	"github.com/angelmondragon/dealerstock-backend/pkg/config"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
	"github.com/angelmondragon/dealerstock-backend/pkg/metrics"
	"github.com/angelmondragon/dealerstock-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Optional fields (redis,
// breakers, caches, metrics) may be nil; the routes degrade gracefully.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           controllers.HealthDB
	Redis        *redis.Client
	HTTPMetrics  *metrics.HTTPMetrics
	Breakers     *breaker.Registry
	Caches       *cache.Registry
	Inflight     *middleware.InflightTracker
	MetricsHTTP  http.Handler
	StartedAt    time.Time
	Cars         carsvc.Service
	Reservations reservationsvc.Service
	Warehouses   warehousesvc.Service
	Inventory    inventorysvc.Service
	Sales        salesvc.Service
}

// NewRouter assembles the middleware chain and the full route tree.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()

	middlewares := []func(http.Handler) http.Handler{
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Identity(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	}
	if d := cfg.Server.RequestTimeout(); d > 0 {
		middlewares = append(middlewares, middleware.Timeout(d, logg))
	}
	if deps.Inflight != nil {
		middlewares = append(middlewares, deps.Inflight.Middleware)
	}
	r.Use(middlewares...)

	if deps.MetricsHTTP != nil {
		r.Handle("/metrics", deps.MetricsHTTP)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.Health(cfg, deps.DB, logg, deps.StartedAt))
		r.Get("/circuit-breakers", controllers.HealthCircuitBreakers(deps.Breakers))
		r.Get("/cache", controllers.HealthCache(deps.Caches))
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.FeatureFlags.EnableRateLimiting && deps.Redis != nil {
			r.Use(middleware.RateLimit(cfg.RateLimit, deps.Redis, logg))
		}

		r.Route("/cars", func(r chi.Router) {
			r.Post("/", controllers.CreateCar(deps.Cars, logg))
			r.Get("/", controllers.ListCars(deps.Cars, logg))
			r.Get("/search", controllers.SearchCars(deps.Cars, logg))

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/dashboard", controllers.AnalyticsDashboard(deps.Inventory, logg))
				r.Get("/depreciation", controllers.AnalyticsDepreciation(deps.Inventory, logg))
				r.Get("/low-stock", controllers.AnalyticsLowStock(deps.Inventory, logg))
			})

			r.Route("/{carId}", func(r chi.Router) {
				r.Get("/", controllers.GetCar(deps.Cars, logg))
				r.Put("/", controllers.UpdateCar(deps.Cars, logg))
				r.Delete("/", controllers.DeleteCar(deps.Cars, logg))
				r.Get("/resilient", controllers.GetCarResilient(deps.Cars, logg))
				r.Put("/versioned", controllers.UpdateCarVersioned(deps.Cars, logg))

				r.Route("/reservations", func(r chi.Router) {
					r.Post("/", controllers.CreateReservation(deps.Reservations, logg))
					r.Get("/", controllers.ListCarReservations(deps.Reservations, logg))
				})
			})
		})

		r.Route("/reservations/{reservationId}", func(r chi.Router) {
			r.Get("/", controllers.GetReservation(deps.Reservations, logg))
			r.Post("/confirm", controllers.ConfirmReservation(deps.Reservations, logg))
			r.Delete("/", controllers.CancelReservation(deps.Reservations, logg))
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Post("/", controllers.CreateWarehouse(deps.Warehouses, logg))
			r.Get("/", controllers.ListWarehouses(deps.Warehouses, logg))

			r.Route("/transfers", func(r chi.Router) {
				r.Post("/", controllers.CreateTransfer(deps.Warehouses, logg))
				r.Route("/{transferId}", func(r chi.Router) {
					r.Get("/", controllers.GetTransfer(deps.Warehouses, logg))
					r.Post("/complete", controllers.CompleteTransfer(deps.Warehouses, logg))
					r.Post("/cancel", controllers.CancelTransfer(deps.Warehouses, logg))
				})
			})

			r.Get("/{warehouseId}", controllers.GetWarehouse(deps.Warehouses, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/alerts", controllers.InventoryAlerts(deps.Inventory, logg))
			r.Get("/velocity", controllers.InventoryVelocity(deps.Inventory, logg))
			r.Get("/metrics", controllers.InventoryMetrics(deps.Inventory, logg))
		})

		r.Post("/sales", controllers.ProcessSale(deps.Sales, logg))
	})

	return r
}
