package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
)

// Reservation holds stock for a buyer until it expires or is confirmed.
type Reservation struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	CarID      string                  `gorm:"column:car_id;not null;index"`
	Quantity   int                     `gorm:"column:quantity;not null"`
	ReservedBy string                  `gorm:"column:reserved_by;not null"`
	ExpiresAt  time.Time               `gorm:"column:expires_at;not null;index"`
	Status     enums.ReservationStatus `gorm:"column:status;not null;default:'Pending';index"`
	Metadata   json.RawMessage         `gorm:"column:metadata;type:jsonb"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the plural table used by the migrations.
func (Reservation) TableName() string { return "reservations" }
