package warehouses

import (
	"context"
	stdErrors "errors"
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

// Service exposes warehouse management and the transfer order lifecycle.
type Service interface {
	CreateWarehouse(ctx context.Context, input CreateWarehouseInput) (*WarehouseDTO, error)
	ListWarehouses(ctx context.Context) ([]WarehouseDTO, error)
	GetWarehouse(ctx context.Context, id string) (*WarehouseDetailDTO, error)

	CreateTransfer(ctx context.Context, input CreateTransferInput) (*TransferDTO, error)
	GetTransfer(ctx context.Context, id uuid.UUID) (*TransferDTO, error)
	CompleteTransfer(ctx context.Context, id uuid.UUID) (*TransferDTO, error)
	CancelTransfer(ctx context.Context, id uuid.UUID) (*TransferDTO, error)
}

type service struct {
	client txRunner
	repo   *Repository
	events outboxPublisher
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires the transfer engine. events may be nil when outbox
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

func (s *service) CreateWarehouse(ctx context.Context, input CreateWarehouseInput) (*WarehouseDTO, error) {
	row := &models.Warehouse{
		WarehouseID:   input.WarehouseID,
		Name:          input.Name,
		Location:      input.Location,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		CapacityTotal: input.CapacityTotal,
		IsActive:      true,
	}
	if err := s.repo.CreateWarehouse(ctx, row); err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeWarehouseNotFound, "creating warehouse")
	}
	return toWarehouseDTO(row), nil
}

func (s *service) ListWarehouses(ctx context.Context) ([]WarehouseDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "listing warehouses")
	}
	out := make([]WarehouseDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toWarehouseDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) GetWarehouse(ctx context.Context, id string) (*WarehouseDetailDTO, error) {
	row, err := s.repo.FindWarehouse(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeWarehouseNotFound, "loading warehouse")
	}
	stock, err := s.repo.StockForWarehouse(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "loading warehouse stock")
	}
	return &WarehouseDetailDTO{
		WarehouseDTO: *toWarehouseDTO(row),
		Stock:        toStockLocationDTOs(stock),
	}, nil
}

// CreateTransfer deducts the source stock and opens the order in one
// transaction. The stock location lock serializes competing transfers.
func (s *service) CreateTransfer(ctx context.Context, input CreateTransferInput) (*TransferDTO, error) {
	if input.FromWarehouseID == input.ToWarehouseID {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidWarehouseOp,
			"source and destination warehouses must differ")
	}
	for _, id := range []string{input.FromWarehouseID, input.ToWarehouseID} {
		if _, err := s.repo.FindWarehouse(ctx, id); err != nil {
			return nil, pkgerrors.FromDB(err, pkgerrors.CodeWarehouseNotFound, "loading warehouse")
		}
	}

	var row *models.TransferOrder
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		available := 0
		location, err := repoTx.LockStockLocation(ctx, input.FromWarehouseID, input.CarID)
		switch {
		case err == nil:
			available = location.Quantity - location.ReservedQuantity
		case stdErrors.Is(err, gorm.ErrRecordNotFound):
			// No stock row means nothing to move.
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "locking source stock")
		}
		if available < 0 {
			available = 0
		}
		if input.Quantity > available {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock,
				"requested %d units but only %d available at %s",
				input.Quantity, available, input.FromWarehouseID).
				WithDetails(map[string]any{
					"requested": input.Quantity,
					"available": available,
				})
		}

		rows, err := repoTx.AdjustStock(ctx, input.FromWarehouseID, input.CarID, -input.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "deducting source stock")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock,
				"stock at %s changed concurrently", input.FromWarehouseID)
		}

		row = &models.TransferOrder{
			ID:              uuid.New(),
			FromWarehouseID: input.FromWarehouseID,
			ToWarehouseID:   input.ToWarehouseID,
			CarID:           input.CarID,
			Quantity:        input.Quantity,
			Status:          enums.TransferStatusInTransit,
		}
		if err := repoTx.CreateTransfer(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "creating transfer order")
		}

		return s.emit(ctx, tx, enums.EventTransferCreated, row.ID, payloads.TransferCreatedEvent{
			TransferID:      row.ID,
			FromWarehouseID: row.FromWarehouseID,
			ToWarehouseID:   row.ToWarehouseID,
			CarID:           row.CarID,
			Quantity:        row.Quantity,
		})
	})
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"transfer_id": row.ID.String(),
		"from":        row.FromWarehouseID,
		"to":          row.ToWarehouseID,
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "transfer created")
	return toTransferDTO(row), nil
}

func (s *service) GetTransfer(ctx context.Context, id uuid.UUID) (*TransferDTO, error) {
	row, err := s.repo.FindTransfer(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeTransferNotFound, "loading transfer")
	}
	return toTransferDTO(row), nil
}

// CompleteTransfer credits the destination and closes the order.
func (s *service) CompleteTransfer(ctx context.Context, id uuid.UUID) (*TransferDTO, error) {
	now := s.now()

	row, err := s.repo.FindTransfer(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeTransferNotFound, "loading transfer")
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		rows, err := repoTx.CompleteTransfer(ctx, id, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "completing transfer")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeTransferConflict,
				"transfer %s is not in transit", id)
		}
		if err := repoTx.CreditStock(ctx, row.ToWarehouseID, row.CarID, row.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "crediting destination stock")
		}

		return s.emit(ctx, tx, enums.EventTransferCompleted, id, payloads.TransferCompletedEvent{
			TransferID:    id,
			ToWarehouseID: row.ToWarehouseID,
			CarID:         row.CarID,
			Quantity:      row.Quantity,
			CompletedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransfer(ctx, id)
}

// CancelTransfer returns the in-flight quantity to the source warehouse.
func (s *service) CancelTransfer(ctx context.Context, id uuid.UUID) (*TransferDTO, error) {
	now := s.now()

	row, err := s.repo.FindTransfer(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeTransferNotFound, "loading transfer")
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		rows, err := repoTx.CancelTransfer(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "cancelling transfer")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeTransferConflict,
				"transfer %s is already decided", id)
		}
		if err := repoTx.CreditStock(ctx, row.FromWarehouseID, row.CarID, row.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "restoring source stock")
		}

		return s.emit(ctx, tx, enums.EventTransferCancelled, id, payloads.TransferCancelledEvent{
			TransferID:      id,
			FromWarehouseID: row.FromWarehouseID,
			CarID:           row.CarID,
			Quantity:        row.Quantity,
			CancelledAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransfer(ctx, id)
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, id uuid.UUID, data any) error {
	if s.events == nil {
		return nil
	}
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateTransferOrder,
		AggregateID:   id.String(),
		Data:          data,
		Version:       1,
	})
}
