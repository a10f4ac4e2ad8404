package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
)

const (
	outboxRetentionDays    = 30
	outboxDLQRetentionDays = 90
	outboxMinAttempts      = 5
)

type OutboxRetentionJobParams struct {
	Logger       *logger.Logger
	DB           txRunner
	Repository   outboxRetentionRepo
	DLQ          outboxDLQRetentionRepo
	Retention    int
	DLQRetention int
	MinAttempts  int
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error)
}

type outboxDLQRetentionRepo interface {
	DeleteFailedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = outboxRetentionDays
	}
	dlqRetention := params.DLQRetention
	if dlqRetention <= 0 {
		dlqRetention = outboxDLQRetentionDays
	}
	minAttempts := params.MinAttempts
	if minAttempts <= 0 {
		minAttempts = outboxMinAttempts
	}
	return &outboxRetentionJob{
		logg:         params.Logger,
		db:           params.DB,
		repo:         params.Repository,
		dlq:          params.DLQ,
		retention:    retention,
		dlqRetention: dlqRetention,
		minAttempts:  minAttempts,
		now:          time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg         *logger.Logger
	db           txRunner
	repo         outboxRetentionRepo
	dlq          outboxDLQRetentionRepo
	retention    int
	dlqRetention int
	minAttempts  int
	now          func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

// Run prunes published outbox rows and aged dead-letter entries. The two
// cleanups run in separate transactions so a failure in one does not block
// the other.
func (j *outboxRetentionJob) Run(ctx context.Context) error {
	var errs error

	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeletePublishedBefore(ctx, tx, cutoff, j.minAttempts)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("outbox retention: %w", err))
	} else {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"cutoff":         cutoff,
			"retention_days": j.retention,
			"min_attempts":   j.minAttempts,
			"rows_deleted":   deleted,
		})
		j.logg.Info(logCtx, "outbox retention cleanup complete")
	}

	if j.dlq != nil {
		dlqCutoff := j.now().UTC().Add(-time.Duration(j.dlqRetention) * 24 * time.Hour)
		var dlqDeleted int64
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			rows, err := j.dlq.DeleteFailedBefore(ctx, tx, dlqCutoff)
			if err != nil {
				return err
			}
			dlqDeleted = rows
			return nil
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("dlq retention: %w", err))
		} else if dlqDeleted > 0 {
			logCtx := j.logg.WithFields(ctx, map[string]any{
				"cutoff":         dlqCutoff,
				"retention_days": j.dlqRetention,
				"rows_deleted":   dlqDeleted,
			})
			j.logg.Info(logCtx, "outbox dlq retention cleanup complete")
		}
	}

	return errs
}
