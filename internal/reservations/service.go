package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealerstock-backend/pkg/errors"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
	"github.com/angelmondragon/dealerstock-backend/pkg/outbox"
	"github.com/angelmondragon/dealerstock-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the stock hold lifecycle.
type Service interface {
	CreateReservation(ctx context.Context, carID string, input CreateReservationInput) (*ReservationDTO, error)
	GetReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error)
	ConfirmReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error)
	CancelReservation(ctx context.Context, id uuid.UUID) error
	ListForCar(ctx context.Context, carID string) ([]ReservationDTO, error)
}

type service struct {
	client txRunner
	repo   *Repository
	events outboxPublisher
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires the reservation engine. events may be nil when outbox
// publishing is not configured.
func NewService(client txRunner, repo *Repository, events outboxPublisher, logg *logger.Logger) Service {
	return &service{
		client: client,
		repo:   repo,
		events: events,
		logg:   logg,
		now:    time.Now,
	}
}

// CreateReservation checks availability and inserts the hold in one
// transaction. The car row lock serializes competing holds.
func (s *service) CreateReservation(ctx context.Context, carID string, input CreateReservationInput) (*ReservationDTO, error) {
	now := s.now()
	var row *models.Reservation

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		total, err := repoTx.LockCarStock(ctx, carID)
		if err != nil {
			return pkgerrors.FromDB(err, pkgerrors.CodeNotFound, "loading car stock")
		}
		reserved, err := repoTx.ReservedQuantity(ctx, carID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "summing reserved stock")
		}

		available := int64(total) - reserved
		if available < 0 {
			available = 0
		}
		if int64(input.Quantity) > available {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock,
				"requested %d units but only %d available", input.Quantity, available).
				WithDetails(map[string]any{
					"requested": input.Quantity,
					"available": available,
				})
		}

		row = &models.Reservation{
			ID:         uuid.New(),
			CarID:      carID,
			Quantity:   input.Quantity,
			ReservedBy: input.ReservedBy,
			ExpiresAt:  now.Add(input.ttl()),
			Status:     enums.ReservationStatusPending,
			Metadata:   input.Metadata,
		}
		if err := repoTx.Create(ctx, row); err != nil {
			return pkgerrors.FromDB(err, pkgerrors.CodeNotFound, "creating reservation")
		}

		return s.emit(ctx, tx, enums.EventReservationCreated, row.ID, payloads.ReservationCreatedEvent{
			ReservationID: row.ID,
			CarID:         row.CarID,
			Quantity:      row.Quantity,
			ReservedBy:    row.ReservedBy,
			ExpiresAt:     row.ExpiresAt,
		})
	})
	if err != nil {
		return nil, err
	}

	fields := map[string]any{"reservation_id": row.ID.String(), "car_id": carID}
	s.logg.Info(s.logg.WithFields(ctx, fields), "reservation created")
	return toReservationDTO(row, now), nil
}

func (s *service) GetReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeReservationNotFound, "loading reservation")
	}
	return toReservationDTO(row, s.now()), nil
}

func (s *service) ConfirmReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error) {
	now := s.now()

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeReservationNotFound, "loading reservation")
	}
	if row.Status != enums.ReservationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeBusinessRule, "reservation is not pending")
	}
	if !row.ExpiresAt.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeReservationExpired, "reservation has expired")
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).Confirm(ctx, id, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "confirming reservation")
		}
		if rows == 0 {
			// Lost a race: the hold expired or was decided between the
			// read and the update.
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "reservation is not pending")
		}
		return s.emit(ctx, tx, enums.EventReservationConfirmed, id, payloads.ReservationConfirmedEvent{
			ReservationID: id,
			CarID:         row.CarID,
			Quantity:      row.Quantity,
			ConfirmedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}

	confirmed, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeReservationNotFound, "loading reservation")
	}
	return toReservationDTO(confirmed, now), nil
}

func (s *service) CancelReservation(ctx context.Context, id uuid.UUID) error {
	now := s.now()

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.FromDB(err, pkgerrors.CodeReservationNotFound, "loading reservation")
	}

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).Cancel(ctx, id, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "cancelling reservation")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeReservationNotFound, "reservation %s not found", id)
		}
		return s.emit(ctx, tx, enums.EventReservationCancelled, id, payloads.ReservationCancelledEvent{
			ReservationID: id,
			CarID:         row.CarID,
			Quantity:      row.Quantity,
			CancelledAt:   now,
		})
	})
}

func (s *service) ListForCar(ctx context.Context, carID string) ([]ReservationDTO, error) {
	rows, err := s.repo.ListByCar(ctx, carID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "listing reservations")
	}
	now := s.now()
	out := make([]ReservationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toReservationDTO(&rows[i], now))
	}
	return out, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, id uuid.UUID, data any) error {
	if s.events == nil {
		return nil
	}
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateReservation,
		AggregateID:   id.String(),
		Data:          data,
		Version:       1,
	})
}
