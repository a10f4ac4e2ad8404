package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
)

// Car represents a dealership listing. CarID is the business identifier
// ("C"-prefixed); Version backs the optimistic concurrency guard.
type Car struct {
	CarID            string           `gorm:"column:car_id;primaryKey"`
	Brand            string           `gorm:"column:brand;not null"`
	Model            string           `gorm:"column:model;not null"`
	Year             int              `gorm:"column:year;not null"`
	Color            *string          `gorm:"column:color"`
	EngineType       enums.EngineType `gorm:"column:engine_type;not null"`
	Transmission     *string          `gorm:"column:transmission"`
	Price            decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	QuantityInStock  int              `gorm:"column:quantity_in_stock;not null;default:0"`
	Status           enums.CarStatus  `gorm:"column:status;not null;default:'Available'"`
	ReorderPoint     int              `gorm:"column:reorder_point;not null;default:2"`
	EconomicOrderQty int              `gorm:"column:economic_order_qty;not null;default:5"`
	Version          int64            `gorm:"column:version;not null;default:1"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt        gorm.DeletedAt   `gorm:"column:deleted_at;index"`
}

// TableName pins the plural table used by the migrations.
func (Car) TableName() string { return "cars" }
