package reservations

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
)

const (
	// DefaultTTLMinutes is applied when the caller omits a hold duration.
	DefaultTTLMinutes = 15
	// MinTTLMinutes and MaxTTLMinutes bound how long a hold can live.
	MinTTLMinutes = 5
	MaxTTLMinutes = 1440
)

// CreateReservationInput holds the validated payload for a new hold.
type CreateReservationInput struct {
	Quantity   int
	ReservedBy string
	TTLMinutes *int
	Metadata   json.RawMessage
}

func (in CreateReservationInput) ttl() time.Duration {
	minutes := DefaultTTLMinutes
	if in.TTLMinutes != nil {
		minutes = *in.TTLMinutes
	}
	if minutes < MinTTLMinutes {
		minutes = MinTTLMinutes
	}
	if minutes > MaxTTLMinutes {
		minutes = MaxTTLMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// ReservationDTO is the wire representation of a stock hold.
type ReservationDTO struct {
	ID                   uuid.UUID       `json:"id"`
	CarID                string          `json:"car_id"`
	Quantity             int             `json:"quantity"`
	ReservedBy           string          `json:"reserved_by"`
	Status               string          `json:"status"`
	ExpiresAt            time.Time       `json:"expires_at"`
	TimeRemainingSeconds int64           `json:"time_remaining_seconds"`
	Metadata             json.RawMessage `json:"metadata,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func toReservationDTO(row *models.Reservation, now time.Time) *ReservationDTO {
	remaining := int64(row.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return &ReservationDTO{
		ID:                   row.ID,
		CarID:                row.CarID,
		Quantity:             row.Quantity,
		ReservedBy:           row.ReservedBy,
		Status:               row.Status.String(),
		ExpiresAt:            row.ExpiresAt,
		TimeRemainingSeconds: remaining,
		Metadata:             row.Metadata,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
}
