package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
)

const stockAlertsSQL = `
WITH sales_stats AS (
    SELECT
        car_id,
        COALESCE(AVG(quantity), 0) AS avg_daily_sales,
        COALESCE(STDDEV(quantity), 0) AS sales_volatility,
        COUNT(*) AS total_sales
    FROM sales_history
    WHERE sold_at > NOW() - INTERVAL '30 days'
    GROUP BY car_id
),
reserved_stats AS (
    SELECT
        car_id,
        COALESCE(SUM(quantity), 0) AS reserved_qty
    FROM reservations
    WHERE status = 'Pending' AND expires_at > NOW()
    GROUP BY car_id
)
SELECT
    c.car_id,
    c.brand,
    c.model,
    c.quantity_in_stock AS current_stock,
    COALESCE(r.reserved_qty, 0) AS reserved_stock,
    (c.quantity_in_stock - COALESCE(r.reserved_qty, 0)::int) AS available_stock,
    c.reorder_point,
    c.economic_order_qty,
    CASE
        WHEN c.quantity_in_stock <= c.reorder_point THEN 'Critical'
        WHEN c.quantity_in_stock <= c.reorder_point * 1.5 THEN 'Warning'
        ELSE 'Ok'
    END AS alert_level,
    CASE
        WHEN s.avg_daily_sales > 0 THEN 'UP'
        ELSE 'STABLE'
    END AS trend_direction,
    10.0 AS trend_percentage,
    s.avg_daily_sales,
    CASE
        WHEN s.avg_daily_sales > 0
        THEN ((c.quantity_in_stock - COALESCE(r.reserved_qty, 0)::int) / s.avg_daily_sales)::int
        ELSE NULL
    END AS days_until_stockout,
    'Reorder' AS suggested_action,
    'Stock below reorder point' AS suggested_description,
    1 AS suggested_priority
FROM cars c
LEFT JOIN sales_stats s ON c.car_id = s.car_id
LEFT JOIN reserved_stats r ON c.car_id = r.car_id
WHERE c.deleted_at IS NULL
AND c.quantity_in_stock <= c.reorder_point * 1.5
ORDER BY alert_level DESC, c.quantity_in_stock ASC
`

const salesVelocitySQL = `
SELECT
    c.car_id,
    c.brand,
    c.model,
    COALESCE(AVG(s.quantity), 0) / ? AS avg_daily_sales,
    COALESCE(STDDEV(s.quantity), 0) AS sales_volatility,
    COUNT(*) FILTER (WHERE s.sold_at > NOW() - INTERVAL '30 days') AS last_30_days_sales,
    COUNT(*) FILTER (WHERE s.sold_at > NOW() - INTERVAL '7 days') AS last_7_days_sales,
    CASE
        WHEN AVG(s.quantity) FILTER (WHERE s.sold_at > NOW() - INTERVAL '7 days') >
             AVG(s.quantity) FILTER (WHERE s.sold_at <= NOW() - INTERVAL '7 days' AND s.sold_at > NOW() - INTERVAL '14 days')
        THEN 'UP'
        ELSE 'DOWN'
    END AS trend_direction
FROM cars c
LEFT JOIN sales_history s ON c.car_id = s.car_id AND s.sold_at > NOW() - INTERVAL '30 days'
WHERE c.deleted_at IS NULL
GROUP BY c.car_id, c.brand, c.model
HAVING COUNT(s.*) > 0
ORDER BY avg_daily_sales DESC
`

const inventoryMetricsSQL = `
SELECT
    COUNT(DISTINCT c.car_id) AS total_cars,
    COALESCE(SUM(c.price * c.quantity_in_stock), 0) AS total_value,
    COUNT(DISTINCT w.warehouse_id) AS total_warehouses,
    COUNT(DISTINCT r.id) FILTER (WHERE r.status = 'Pending') AS active_reservations,
    COALESCE(SUM(r.quantity) FILTER (WHERE r.status = 'Pending'), 0) AS reserved_units,
    COUNT(DISTINCT c.car_id) FILTER (WHERE c.quantity_in_stock <= c.reorder_point) AS low_stock_items
FROM cars c
CROSS JOIN warehouses w
LEFT JOIN reservations r ON c.car_id = r.car_id
WHERE c.deleted_at IS NULL
`

const statusDistributionSQL = `
SELECT
    status,
    COUNT(*) AS total_units,
    COALESCE(SUM(price * quantity_in_stock), 0) AS inventory_value
FROM cars
WHERE deleted_at IS NULL
GROUP BY status
ORDER BY status ASC
`

// Repository runs the reporting queries. The SQL targets Postgres.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) StatusDistribution(ctx context.Context) ([]StatusStat, error) {
	var rows []StatusStat
	err := r.db.WithContext(ctx).Raw(statusDistributionSQL).Scan(&rows).Error
	return rows, err
}

// DepreciationReport lists cars still listed Available whose model year is
// more than five years behind the given year.
func (r *Repository) DepreciationReport(ctx context.Context, currentYear int) ([]models.Car, error) {
	var rows []models.Car
	err := r.db.WithContext(ctx).
		Where("year < ? AND status = ? AND deleted_at IS NULL", currentYear-5, "Available").
		Order("year ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) LowStockReport(ctx context.Context, threshold int) ([]models.Car, error) {
	var rows []models.Car
	err := r.db.WithContext(ctx).
		Where("quantity_in_stock < ? AND deleted_at IS NULL", threshold).
		Order("quantity_in_stock ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) StockAlerts(ctx context.Context) ([]StockAlert, error) {
	var rows []StockAlert
	err := r.db.WithContext(ctx).Raw(stockAlertsSQL).Scan(&rows).Error
	return rows, err
}

func (r *Repository) SalesVelocity(ctx context.Context, days int) ([]SalesVelocity, error) {
	var rows []SalesVelocity
	err := r.db.WithContext(ctx).Raw(salesVelocitySQL, float64(days)).Scan(&rows).Error
	return rows, err
}

func (r *Repository) Metrics(ctx context.Context) (*InventoryMetrics, error) {
	var row InventoryMetrics
	err := r.db.WithContext(ctx).Raw(inventoryMetricsSQL).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
