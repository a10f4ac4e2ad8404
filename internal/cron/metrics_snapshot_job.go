package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
)

const upsertMetricsSnapshotSQL = `
INSERT INTO inventory_metrics_history (
    metric_hour,
    total_cars,
    total_value,
    active_reservations,
    reserved_units,
    low_stock_count,
    available_stock_value
)
SELECT
    DATE_TRUNC('hour', NOW()),
    COUNT(DISTINCT c.car_id),
    COALESCE(SUM(c.price * c.quantity_in_stock), 0),
    COUNT(DISTINCT r.id) FILTER (WHERE r.status = 'Pending' AND r.expires_at > NOW()),
    COALESCE(SUM(r.quantity) FILTER (WHERE r.status = 'Pending' AND r.expires_at > NOW()), 0),
    COUNT(DISTINCT c.car_id) FILTER (WHERE c.quantity_in_stock <= c.reorder_point),
    COALESCE(SUM(
        c.price * (c.quantity_in_stock - COALESCE(
            (SELECT SUM(r2.quantity)
             FROM reservations r2
             WHERE r2.car_id = c.car_id
               AND r2.status = 'Pending'
               AND r2.expires_at > NOW()),
            0
        ))
    ), 0)
FROM cars c
LEFT JOIN reservations r ON c.car_id = r.car_id
WHERE c.deleted_at IS NULL
ON CONFLICT (metric_hour) DO UPDATE SET
    total_cars = EXCLUDED.total_cars,
    total_value = EXCLUDED.total_value,
    active_reservations = EXCLUDED.active_reservations,
    reserved_units = EXCLUDED.reserved_units,
    low_stock_count = EXCLUDED.low_stock_count,
    available_stock_value = EXCLUDED.available_stock_value,
    updated_at = NOW()
`

// MetricsSnapshotJobParams configure the hourly snapshot upsert.
type MetricsSnapshotJobParams struct {
	Logger *logger.Logger
	DB     txRunner
}

// NewMetricsSnapshotJob builds the job that maintains the hourly
// inventory_metrics_history row.
func NewMetricsSnapshotJob(params MetricsSnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	return &metricsSnapshotJob{logg: params.Logger, db: params.DB}, nil
}

type metricsSnapshotJob struct {
	logg *logger.Logger
	db   txRunner
}

func (j *metricsSnapshotJob) Name() string { return "metrics-snapshot" }

func (j *metricsSnapshotJob) Run(ctx context.Context) error {
	start := time.Now()
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.WithContext(ctx).Exec(upsertMetricsSnapshotSQL).Error
	})
	if err != nil {
		return fmt.Errorf("metrics snapshot: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "elapsed_ms", time.Since(start).Milliseconds())
	j.logg.Debug(logCtx, "inventory metrics history updated")
	return nil
}
