package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
)

// TransferOrder moves stock between warehouses. Source stock is deducted
// when the order is created; the destination is credited on completion.
type TransferOrder struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	FromWarehouseID string               `gorm:"column:from_warehouse_id;not null;index"`
	ToWarehouseID   string               `gorm:"column:to_warehouse_id;not null;index"`
	CarID           string               `gorm:"column:car_id;not null"`
	Quantity        int                  `gorm:"column:quantity;not null"`
	Status          enums.TransferStatus `gorm:"column:status;not null;default:'Pending'"`
	RequestedAt     time.Time            `gorm:"column:requested_at;autoCreateTime"`
	CompletedAt     *time.Time           `gorm:"column:completed_at"`
}

// TableName pins the plural table used by the migrations.
func (TransferOrder) TableName() string { return "transfer_orders" }
