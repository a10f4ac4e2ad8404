package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
)

// DefaultLowStockThreshold is applied when the caller omits a threshold.
const DefaultLowStockThreshold = 3

// StatusStat is one slice of the status distribution.
type StatusStat struct {
	Status         string          `json:"status"`
	TotalUnits     int64           `json:"total_units"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

// DashboardStats summarizes the fleet for the dashboard endpoint.
type DashboardStats struct {
	StatusDistribution  []StatusStat    `json:"status_distribution"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
}

// Trend directions reported by the velocity and alert queries.
const (
	TrendUp     = "UP"
	TrendDown   = "DOWN"
	TrendStable = "STABLE"
)

// StockAlert flags a car at or near its reorder point.
type StockAlert struct {
	CarID                string           `json:"car_id"`
	Brand                string           `json:"brand"`
	Model                string           `json:"model"`
	CurrentStock         int              `json:"current_stock"`
	ReservedStock        int64            `json:"reserved_stock"`
	AvailableStock       int              `json:"available_stock"`
	ReorderPoint         int              `json:"reorder_point"`
	EconomicOrderQty     int              `json:"economic_order_qty"`
	AlertLevel           enums.AlertLevel `json:"alert_level"`
	TrendDirection       string           `json:"trend_direction"`
	TrendPercentage      float64          `json:"trend_percentage"`
	AvgDailySales        *float64         `json:"avg_daily_sales,omitempty"`
	DaysUntilStockout    *int             `json:"days_until_stockout,omitempty"`
	SuggestedAction      enums.ActionType `json:"suggested_action"`
	SuggestedDescription string           `json:"suggested_description"`
	SuggestedPriority    int              `json:"suggested_priority"`
}

// SalesVelocity reports per-car sales pace over the trailing month.
type SalesVelocity struct {
	CarID           string  `json:"car_id"`
	Brand           string  `json:"brand"`
	Model           string  `json:"model"`
	AvgDailySales   float64 `json:"avg_daily_sales"`
	SalesVolatility float64 `json:"sales_volatility"`
	Last30DaysSales int64   `json:"last_30_days_sales"`
	Last7DaysSales  int64   `json:"last_7_days_sales"`
	TrendDirection  string  `json:"trend_direction"`
}

// InventoryMetrics is the single-row aggregate for the metrics endpoint.
type InventoryMetrics struct {
	TotalCars          int64           `json:"total_cars"`
	TotalValue         decimal.Decimal `json:"total_value"`
	TotalWarehouses    int64           `json:"total_warehouses"`
	ActiveReservations int64           `json:"active_reservations"`
	ReservedUnits      int64           `json:"reserved_units"`
	LowStockItems      int64           `json:"low_stock_items"`
	StockTurnoverRate  float64         `json:"stock_turnover_rate"`
}
