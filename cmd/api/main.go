package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/dealerstock-backend/api/middleware"
	"github.com/angelmondragon/dealerstock-backend/api/responses"
	"github.com/angelmondragon/dealerstock-backend/api/routes"
	"github.com/angelmondragon/dealerstock-backend/internal/cars"
	"github.com/angelmondragon/dealerstock-backend/internal/inventory"
	"github.com/angelmondragon/dealerstock-backend/internal/reservations"
	"github.com/angelmondragon/dealerstock-backend/internal/sales"
	"github.com/angelmondragon/dealerstock-backend/internal/warehouses"
	"github.com/angelmondragon/dealerstock-backend/pkg/breaker"
	"github.com/angelmondragon/dealerstock-backend/pkg/cache"
	"github.com/angelmondragon/dealerstock-backend/pkg/config"
	"github.com/angelmondragon/dealerstock-backend/pkg/db"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
	"github.com/angelmondragon/dealerstock-backend/pkg/metrics"
	"github.com/angelmondragon/dealerstock-backend/pkg/migrate"
	"github.com/angelmondragon/dealerstock-backend/pkg/outbox"
	"github.com/angelmondragon/dealerstock-backend/pkg/redis"
)

// Breaker guarding the resilient read path.
const databaseBreakerName = "database_operations"

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	responses.SetDebugDetails(cfg.FeatureFlags.DebugErrors)

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.FeatureFlags.EnableRateLimiting {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	promRegistry := prometheus.NewRegistry()
	var httpMetrics *metrics.HTTPMetrics
	var breakerMetrics *metrics.BreakerMetrics
	var cacheMetrics *metrics.CacheMetrics
	var metricsHandler http.Handler
	if cfg.FeatureFlags.EnableMetrics {
		promRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		httpMetrics = metrics.NewHTTPMetrics(promRegistry)
		breakerMetrics = metrics.NewBreakerMetrics(promRegistry)
		cacheMetrics = metrics.NewCacheMetrics(promRegistry)
		metricsHandler = promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})
	}

	breakers := breaker.NewRegistry(breakerMetrics)
	dbBreaker := breakers.GetOrCreate(databaseBreakerName, breaker.DefaultSettings())

	cacheRegistry := cache.NewRegistry()
	var carCache *cache.Cache[cars.CarDTO]
	var dashboardCache *cache.Cache[inventory.DashboardStats]
	var lowStockCache *cache.Cache[[]cars.CarDTO]
	var depreciationCache *cache.Cache[[]cars.CarDTO]
	if cfg.FeatureFlags.EnableCaching {
		carCache = cache.New[cars.CarDTO](cache.CarByIDCache, 1000, 60*time.Second, 300*time.Second, cacheMetrics)
		dashboardCache = cache.New[inventory.DashboardStats](cache.DashboardStatsCache, 100, 30*time.Second, 0, cacheMetrics)
		lowStockCache = cache.New[[]cars.CarDTO](cache.LowStockCache, 10, 10*time.Second, 0, cacheMetrics)
		depreciationCache = cache.New[[]cars.CarDTO](cache.DepreciationCache, 10, 300*time.Second, 0, cacheMetrics)
		cacheRegistry.Register(cache.CarByIDCache, carCache)
		cacheRegistry.Register(cache.DashboardStatsCache, dashboardCache)
		cacheRegistry.Register(cache.LowStockCache, lowStockCache)
		cacheRegistry.Register(cache.DepreciationCache, depreciationCache)
	}

	events := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	carRepo := cars.NewRepository(dbClient.DB())
	reservationRepo := reservations.NewRepository(dbClient.DB())

	carService := cars.NewService(carRepo, carCache, cacheRegistry, dbBreaker, logg, cfg.FeatureFlags.EnableCaching)
	reservationService := reservations.NewService(dbClient, reservationRepo, events, logg)
	warehouseService := warehouses.NewService(dbClient, warehouses.NewRepository(dbClient.DB()), events, logg)
	inventoryService := inventory.NewService(inventory.NewRepository(dbClient.DB()), dashboardCache, lowStockCache, depreciationCache, cfg.Cache.LowStockThreshold, logg)
	saleService := sales.NewService(dbClient, carRepo, reservationRepo, events, cacheRegistry, logg)

	inflight := middleware.NewInflightTracker(httpMetrics)

	router := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		HTTPMetrics:  httpMetrics,
		Breakers:     breakers,
		Caches:       cacheRegistry,
		Inflight:     inflight,
		MetricsHTTP:  metricsHandler,
		StartedAt:    time.Now(),
		Cars:         carService,
		Reservations: reservationService,
		Warehouses:   warehouseService,
		Inventory:    inventoryService,
		Sales:        saleService,
	})

	// WriteTimeout sits above the per-request deadline so the 408 envelope
	// from the timeout middleware can still reach the client.
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.RequestTimeout(),
		WriteTimeout:      cfg.Server.RequestTimeout() + 5*time.Second,
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": server.Addr,
	})
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
		if remaining := inflight.Drain(shutdownCtx, 0); remaining > 0 {
			logg.Warn(logg.WithFields(ctx, map[string]any{"in_flight": remaining}), "requests still in flight at shutdown")
		}
		logg.Info(ctx, "api server stopped")
	}
}
