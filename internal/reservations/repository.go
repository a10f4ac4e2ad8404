package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
)

// Repository wires reservation persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// LockCarStock loads the car's stock level under a row lock. Must run
// inside a transaction.
func (r *Repository) LockCarStock(ctx context.Context, carID string) (int, error) {
	var car models.Car
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("quantity_in_stock").
		First(&car, "car_id = ?", carID).Error
	if err != nil {
		return 0, err
	}
	return car.QuantityInStock, nil
}

// ReservedQuantity sums the live pending holds for the car.
func (r *Repository) ReservedQuantity(ctx context.Context, carID string, now time.Time) (int64, error) {
	var reserved int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("car_id = ? AND status = ? AND expires_at > ?", carID, enums.ReservationStatusPending, now).
		Scan(&reserved).Error
	return reserved, err
}

// Create persists the reservation row.
func (r *Repository) Create(ctx context.Context, row *models.Reservation) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// FindByID loads a reservation.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var row models.Reservation
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByCar returns the reservations for a car, newest first.
func (r *Repository) ListByCar(ctx context.Context, carID string) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Where("car_id = ?", carID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// Confirm flips a pending, unexpired hold to Confirmed. Zero rows means
// the hold is gone, already decided, or expired.
func (r *Repository) Confirm(ctx context.Context, id uuid.UUID, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status = ? AND expires_at > ?", id, enums.ReservationStatusPending, now).
		Updates(map[string]any{
			"status":     enums.ReservationStatusConfirmed,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

// Cancel flips a pending hold to Cancelled. Zero rows means the hold is
// gone or already decided; a Confirmed reservation can never be cancelled
// this way.
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, enums.ReservationStatusPending).
		Updates(map[string]any{
			"status":     enums.ReservationStatusCancelled,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}
