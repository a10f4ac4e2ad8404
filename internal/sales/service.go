package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerstock-backend/internal/cars"
	"github.com/angelmondragon/dealerstock-backend/internal/reservations"
	"github.com/angelmondragon/dealerstock-backend/pkg/cache"
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

// SaleReceipt summarizes a completed purchase.
type SaleReceipt struct {
	SaleID        uuid.UUID       `json:"sale_id"`
	ReservationID uuid.UUID       `json:"reservation_id"`
	CarID         string          `json:"car_id"`
	Quantity      int             `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// Service converts confirmed reservations into sales.
type Service interface {
	ProcessSale(ctx context.Context, reservationID uuid.UUID, soldBy string) (*SaleReceipt, error)
}

type service struct {
	client          txRunner
	carRepo         *cars.Repository
	reservationRepo *reservations.Repository
	events          outboxPublisher
	caches          *cache.Registry
	logg            *logger.Logger
	now             func() time.Time
}

// NewService wires the sale flow. events and caches may be nil.
func NewService(
	client txRunner,
	carRepo *cars.Repository,
	reservationRepo *reservations.Repository,
	events outboxPublisher,
	caches *cache.Registry,
	logg *logger.Logger,
) Service {
	return &service{
		client:          client,
		carRepo:         carRepo,
		reservationRepo: reservationRepo,
		events:          events,
		caches:          caches,
		logg:            logg,
		now:             time.Now,
	}
}

// ProcessSale confirms the pending hold, draws down the car stock and
// appends the sale record in one transaction.
func (s *service) ProcessSale(ctx context.Context, reservationID uuid.UUID, soldBy string) (*SaleReceipt, error) {
	now := s.now()
	var receipt *SaleReceipt
	var carID string

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		reservationTx := s.reservationRepo.WithTx(tx)
		carTx := s.carRepo.WithTx(tx)

		reservation, err := reservationTx.FindByID(ctx, reservationID)
		if err != nil {
			return pkgerrors.FromDB(err, pkgerrors.CodeReservationNotFound, "loading reservation")
		}
		if reservation.Status != enums.ReservationStatusPending {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "reservation is not pending")
		}
		if !reservation.ExpiresAt.After(now) {
			return pkgerrors.New(pkgerrors.CodeReservationExpired, "reservation has expired")
		}

		rows, err := reservationTx.Confirm(ctx, reservationID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "confirming reservation")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "reservation is not pending")
		}

		car, err := carTx.FindByIDForUpdate(ctx, reservation.CarID)
		if err != nil {
			return pkgerrors.FromDB(err, pkgerrors.CodeNotFound, "loading car")
		}
		if car.QuantityInStock < reservation.Quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock,
				"requested %d units but only %d in stock",
				reservation.Quantity, car.QuantityInStock).
				WithDetails(map[string]any{
					"requested": reservation.Quantity,
					"available": car.QuantityInStock,
				})
		}

		remaining := car.QuantityInStock - reservation.Quantity
		updates := map[string]any{"quantity_in_stock": remaining}
		if remaining == 0 {
			updates["status"] = enums.CarStatusSold
		}
		if _, err := carTx.UpdateFields(ctx, car.CarID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "drawing down car stock")
		}

		sale := &models.Sale{
			ID:            uuid.New(),
			CarID:         car.CarID,
			ReservationID: &reservationID,
			Quantity:      reservation.Quantity,
			SalePrice:     car.Price,
			SoldBy:        soldBy,
			SoldAt:        now,
		}
		if err := tx.WithContext(ctx).Create(sale).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "recording sale")
		}

		carID = car.CarID
		receipt = &SaleReceipt{
			SaleID:        sale.ID,
			ReservationID: reservationID,
			CarID:         car.CarID,
			Quantity:      reservation.Quantity,
			TotalPrice:    car.Price.Mul(decimal.NewFromInt(int64(reservation.Quantity))),
		}

		if s.events == nil {
			return nil
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCarSold,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID.String(),
			Data: payloads.CarSoldEvent{
				SaleID:        sale.ID,
				CarID:         sale.CarID,
				ReservationID: sale.ReservationID,
				Quantity:      sale.Quantity,
				SalePrice:     sale.SalePrice,
				SoldBy:        sale.SoldBy,
				SoldAt:        sale.SoldAt,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.caches != nil {
		s.caches.InvalidateCar(carID)
	}

	fields := map[string]any{
		"sale_id":        receipt.SaleID.String(),
		"reservation_id": reservationID.String(),
		"car_id":         carID,
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "sale processed")
	return receipt, nil
}
