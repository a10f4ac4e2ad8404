package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryMetricSnapshot is the hourly rollup written by the background
// worker. MetricHour is truncated to the hour and acts as the upsert key.
type InventoryMetricSnapshot struct {
	MetricHour          time.Time       `gorm:"column:metric_hour;primaryKey"`
	TotalCars           int64           `gorm:"column:total_cars;not null"`
	TotalValue          decimal.Decimal `gorm:"column:total_value;type:numeric(14,2);not null"`
	ActiveReservations  int64           `gorm:"column:active_reservations;not null"`
	ReservedUnits       int64           `gorm:"column:reserved_units;not null"`
	LowStockCount       int64           `gorm:"column:low_stock_count;not null"`
	AvailableStockValue decimal.Decimal `gorm:"column:available_stock_value;type:numeric(14,2);not null"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the history-style name from the reporting queries.
func (InventoryMetricSnapshot) TableName() string { return "inventory_metrics_history" }
