package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
	"github.com/angelmondragon/dealerstock-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// The sweep expires stale holds, returns their quantity to the car rows and
// flips cars out of Reserved when stock comes back, all in one statement.
const expireReservationsSQL = `
WITH expired AS (
    UPDATE reservations
    SET status = 'Expired', updated_at = NOW()
    WHERE status = 'Pending'
      AND expires_at < NOW()
    RETURNING id, car_id, quantity
),
restored_stock AS (
    UPDATE cars
    SET quantity_in_stock = quantity_in_stock + expired.quantity,
        status = CASE
            WHEN status = 'Reserved' AND quantity_in_stock + expired.quantity > 0
            THEN 'Available'
            ELSE status
        END,
        updated_at = NOW()
    FROM expired
    WHERE cars.car_id = expired.car_id
    RETURNING cars.car_id
)
SELECT COUNT(*) AS count FROM expired
`

// ReservationExpiryJobParams configure the expiry sweep.
type ReservationExpiryJobParams struct {
	Logger  *logger.Logger
	DB      txRunner
	Metrics *metrics.InventoryWorkerMetrics
}

// NewReservationExpiryJob builds the job that expires stale stock holds.
func NewReservationExpiryJob(params ReservationExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	return &reservationExpiryJob{
		logg:    params.Logger,
		db:      params.DB,
		metrics: params.Metrics,
	}, nil
}

type reservationExpiryJob struct {
	logg    *logger.Logger
	db      txRunner
	metrics *metrics.InventoryWorkerMetrics
}

func (j *reservationExpiryJob) Name() string { return "reservation-expiry" }

func (j *reservationExpiryJob) Run(ctx context.Context) error {
	start := time.Now()
	var expired int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.WithContext(ctx).Raw(expireReservationsSQL).Scan(&expired).Error
	})
	if err != nil {
		return fmt.Errorf("expire reservations: %w", err)
	}
	if expired == 0 {
		return nil
	}
	j.metrics.AddExpiredReservations(expired)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"expired_reservations": expired,
		"elapsed_ms":           time.Since(start).Milliseconds(),
	})
	j.logg.Info(logCtx, "expired reservations processed and stock restored")
	return nil
}
