package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationCreatedEvent signals a new pending stock hold.
type ReservationCreatedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	CarID         string    `json:"car_id"`
	Quantity      int       `json:"quantity"`
	ReservedBy    string    `json:"reserved_by"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// ReservationConfirmedEvent is emitted when a pending hold converts.
type ReservationConfirmedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	CarID         string    `json:"car_id"`
	Quantity      int       `json:"quantity"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// ReservationCancelledEvent is emitted when a hold is released explicitly.
type ReservationCancelledEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	CarID         string    `json:"car_id"`
	Quantity      int       `json:"quantity"`
	CancelledAt   time.Time `json:"cancelled_at"`
}

// ReservationExpiredEvent is emitted by the background sweep.
type ReservationExpiredEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	CarID         string    `json:"car_id"`
	Quantity      int       `json:"quantity"`
	ExpiredAt     time.Time `json:"expired_at"`
}

// TransferCreatedEvent signals stock leaving the source warehouse.
type TransferCreatedEvent struct {
	TransferID      uuid.UUID `json:"transfer_id"`
	FromWarehouseID string    `json:"from_warehouse_id"`
	ToWarehouseID   string    `json:"to_warehouse_id"`
	CarID           string    `json:"car_id"`
	Quantity        int       `json:"quantity"`
}

// TransferCompletedEvent signals stock arriving at the destination.
type TransferCompletedEvent struct {
	TransferID    uuid.UUID `json:"transfer_id"`
	ToWarehouseID string    `json:"to_warehouse_id"`
	CarID         string    `json:"car_id"`
	Quantity      int       `json:"quantity"`
	CompletedAt   time.Time `json:"completed_at"`
}

// TransferCancelledEvent signals stock returned to the source warehouse.
type TransferCancelledEvent struct {
	TransferID      uuid.UUID `json:"transfer_id"`
	FromWarehouseID string    `json:"from_warehouse_id"`
	CarID           string    `json:"car_id"`
	Quantity        int       `json:"quantity"`
	CancelledAt     time.Time `json:"cancelled_at"`
}

// CarSoldEvent captures the completed sale for downstream analytics.
type CarSoldEvent struct {
	SaleID        uuid.UUID       `json:"sale_id"`
	CarID         string          `json:"car_id"`
	ReservationID *uuid.UUID      `json:"reservation_id,omitempty"`
	Quantity      int             `json:"quantity"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	SoldBy        string          `json:"sold_by"`
	SoldAt        time.Time       `json:"sold_at"`
}
