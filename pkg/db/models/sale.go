package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is an append-only record of a completed purchase.
type Sale struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CarID         string          `gorm:"column:car_id;not null;index"`
	ReservationID *uuid.UUID      `gorm:"column:reservation_id;type:uuid"`
	Quantity      int             `gorm:"column:quantity;not null"`
	SalePrice     decimal.Decimal `gorm:"column:sale_price;type:numeric(12,2);not null"`
	SoldBy        string          `gorm:"column:sold_by;not null"`
	SoldAt        time.Time       `gorm:"column:sold_at;autoCreateTime;index"`
}

// TableName keeps the history-style name from the reporting queries.
func (Sale) TableName() string { return "sales_history" }
