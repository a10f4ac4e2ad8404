package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealerstock-backend/internal/cars"
	"github.com/angelmondragon/dealerstock-backend/pkg/cache"
	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dealerstock-backend/pkg/errors"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
)

// DefaultVelocityWindowDays is the trailing window for sales velocity.
const DefaultVelocityWindowDays = 30

type queries interface {
	StatusDistribution(ctx context.Context) ([]StatusStat, error)
	DepreciationReport(ctx context.Context, currentYear int) ([]models.Car, error)
	LowStockReport(ctx context.Context, threshold int) ([]models.Car, error)
	StockAlerts(ctx context.Context) ([]StockAlert, error)
	SalesVelocity(ctx context.Context, days int) ([]SalesVelocity, error)
	Metrics(ctx context.Context) (*InventoryMetrics, error)
}

// Service exposes the reporting surface.
type Service interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	DepreciationReport(ctx context.Context) ([]cars.CarDTO, error)
	LowStockReport(ctx context.Context, threshold *int) ([]cars.CarDTO, error)
	StockAlerts(ctx context.Context) ([]StockAlert, error)
	SalesVelocity(ctx context.Context, days int) ([]SalesVelocity, error)
	Metrics(ctx context.Context) (*InventoryMetrics, error)
}

type service struct {
	repo              queries
	dashboardCache    *cache.Cache[DashboardStats]
	lowStockCache     *cache.Cache[[]cars.CarDTO]
	depreciationCache *cache.Cache[[]cars.CarDTO]
	lowStockThreshold int
	logg              *logger.Logger
	now               func() time.Time
}

// NewService wires the reporting queries behind their caches. Any cache may
// be nil to bypass caching for that report. lowStockThreshold is the
// operator-configured default; zero falls back to DefaultLowStockThreshold.
func NewService(
	repo queries,
	dashboardCache *cache.Cache[DashboardStats],
	lowStockCache *cache.Cache[[]cars.CarDTO],
	depreciationCache *cache.Cache[[]cars.CarDTO],
	lowStockThreshold int,
	logg *logger.Logger,
) Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &service{
		repo:              repo,
		dashboardCache:    dashboardCache,
		lowStockCache:     lowStockCache,
		depreciationCache: depreciationCache,
		lowStockThreshold: lowStockThreshold,
		logg:              logg,
		now:               time.Now,
	}
}

func (s *service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if s.dashboardCache != nil {
		if cached, ok := s.dashboardCache.Get(cache.GlobalKey); ok {
			return &cached, nil
		}
	}

	distribution, err := s.repo.StatusDistribution(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "loading status distribution")
	}
	total := decimal.Zero
	for _, stat := range distribution {
		total = total.Add(stat.InventoryValue)
	}
	stats := DashboardStats{
		StatusDistribution:  distribution,
		TotalInventoryValue: total,
	}

	if s.dashboardCache != nil {
		s.dashboardCache.Set(cache.GlobalKey, stats)
	}
	return &stats, nil
}

func (s *service) DepreciationReport(ctx context.Context) ([]cars.CarDTO, error) {
	if s.depreciationCache != nil {
		if cached, ok := s.depreciationCache.Get(cache.GlobalKey); ok {
			return cached, nil
		}
	}

	rows, err := s.repo.DepreciationReport(ctx, s.now().Year())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "loading depreciation report")
	}
	report := cars.DTOsFromModels(rows)

	if s.depreciationCache != nil {
		s.depreciationCache.Set(cache.GlobalKey, report)
	}
	return report, nil
}

func (s *service) LowStockReport(ctx context.Context, threshold *int) ([]cars.CarDTO, error) {
	limit := s.lowStockThreshold
	if threshold != nil && *threshold > 0 {
		limit = *threshold
	}
	key := fmt.Sprintf("threshold_%d", limit)

	if s.lowStockCache != nil {
		if cached, ok := s.lowStockCache.Get(key); ok {
			return cached, nil
		}
	}

	rows, err := s.repo.LowStockReport(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "loading low stock report")
	}
	report := cars.DTOsFromModels(rows)

	if s.lowStockCache != nil {
		s.lowStockCache.Set(key, report)
	}
	return report, nil
}

func (s *service) StockAlerts(ctx context.Context) ([]StockAlert, error) {
	rows, err := s.repo.StockAlerts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "loading stock alerts")
	}
	return rows, nil
}

func (s *service) SalesVelocity(ctx context.Context, days int) ([]SalesVelocity, error) {
	if days <= 0 {
		days = DefaultVelocityWindowDays
	}
	rows, err := s.repo.SalesVelocity(ctx, days)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "loading sales velocity")
	}
	return rows, nil
}

func (s *service) Metrics(ctx context.Context) (*InventoryMetrics, error) {
	row, err := s.repo.Metrics(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "loading inventory metrics")
	}
	return row, nil
}
