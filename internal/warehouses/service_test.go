package warehouses

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealerstock-backend/pkg/errors"
	"github.com/angelmondragon/dealerstock-backend/pkg/outbox"
)

type capturingPublisher struct {
	events []outbox.DomainEvent
}

func (p *capturingPublisher) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	p.events = append(p.events, event)
	return nil
}

func newTestService(t *testing.T) (*service, *gorm.DB, *capturingPublisher) {
	t.Helper()
	conn := newTestDB(t)
	events := &capturingPublisher{}
	svc := NewService(gormTxRunner{db: conn}, NewRepository(conn), events, newTestLogger()).(*service)
	return svc, conn, events
}

func stockQuantity(t *testing.T, conn *gorm.DB, warehouseID, carID string) int {
	t.Helper()
	var row models.StockLocation
	err := conn.Where("warehouse_id = ? AND car_id = ?", warehouseID, carID).First(&row).Error
	if err != nil {
		t.Fatalf("load stock location: %v", err)
	}
	return row.Quantity
}

func TestListWarehousesActiveOnlySortedByName(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)

	mustCreateTestWarehouse(t, conn, uniqueWarehouseID("W"), "Zeta Yard")
	mustCreateTestWarehouse(t, conn, uniqueWarehouseID("W"), "Alpha Yard")
	inactive := mustCreateTestWarehouse(t, conn, uniqueWarehouseID("W"), "Closed Yard")
	require.NoError(t, conn.Model(inactive).Update("is_active", false).Error)

	listed, err := svc.ListWarehouses(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "Alpha Yard", listed[0].Name)
	require.Equal(t, "Zeta Yard", listed[1].Name)
}

func TestGetWarehouseIncludesStock(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)

	id := uniqueWarehouseID("W")
	mustCreateTestWarehouse(t, conn, id, "North Yard")
	mustStockCar(t, conn, id, "CAR-001", 5, 1)
	mustStockCar(t, conn, id, "CAR-002", 2, 0)

	detail, err := svc.GetWarehouse(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, detail.Stock, 2)
	require.Equal(t, "CAR-001", detail.Stock[0].CarID)
	require.Equal(t, 5, detail.Stock[0].Quantity)

	_, err = svc.GetWarehouse(context.Background(), "W-MISSING")
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeWarehouseNotFound, appErr.Code())
}

func TestCreateTransferDeductsSourceAtCreation(t *testing.T) {
	t.Parallel()
	svc, conn, events := newTestService(t)
	ctx := context.Background()

	from := uniqueWarehouseID("W")
	to := uniqueWarehouseID("W")
	mustCreateTestWarehouse(t, conn, from, "Source Yard")
	mustCreateTestWarehouse(t, conn, to, "Destination Yard")
	mustStockCar(t, conn, from, "CAR-001", 5, 1)

	created, err := svc.CreateTransfer(ctx, CreateTransferInput{
		FromWarehouseID: from,
		ToWarehouseID:   to,
		CarID:           "CAR-001",
		Quantity:        3,
	})
	require.NoError(t, err)
	require.Equal(t, string(enums.TransferStatusInTransit), created.Status)
	require.Equal(t, 2, stockQuantity(t, conn, from, "CAR-001"))
	require.Len(t, events.events, 1)
	require.Equal(t, enums.EventTransferCreated, events.events[0].EventType)

	// Reserved units are not transferable: 2 on hand minus 1 reserved.
	_, err = svc.CreateTransfer(ctx, CreateTransferInput{
		FromWarehouseID: from,
		ToWarehouseID:   to,
		CarID:           "CAR-001",
		Quantity:        2,
	})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeInsufficientStock, appErr.Code())
}

func TestCreateTransferRejectsSameWarehouse(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)

	id := uniqueWarehouseID("W")
	mustCreateTestWarehouse(t, conn, id, "Only Yard")

	_, err := svc.CreateTransfer(context.Background(), CreateTransferInput{
		FromWarehouseID: id,
		ToWarehouseID:   id,
		CarID:           "CAR-001",
		Quantity:        1,
	})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeInvalidWarehouseOp, appErr.Code())
}

func TestCreateTransferUnknownWarehouse(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)

	from := uniqueWarehouseID("W")
	mustCreateTestWarehouse(t, conn, from, "Source Yard")

	_, err := svc.CreateTransfer(context.Background(), CreateTransferInput{
		FromWarehouseID: from,
		ToWarehouseID:   "W-MISSING",
		CarID:           "CAR-001",
		Quantity:        1,
	})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeWarehouseNotFound, appErr.Code())
}

func TestCompleteTransferCreditsDestination(t *testing.T) {
	t.Parallel()
	svc, conn, events := newTestService(t)
	ctx := context.Background()

	from := uniqueWarehouseID("W")
	to := uniqueWarehouseID("W")
	mustCreateTestWarehouse(t, conn, from, "Source Yard")
	mustCreateTestWarehouse(t, conn, to, "Destination Yard")
	mustStockCar(t, conn, from, "CAR-001", 4, 0)

	created, err := svc.CreateTransfer(ctx, CreateTransferInput{
		FromWarehouseID: from,
		ToWarehouseID:   to,
		CarID:           "CAR-001",
		Quantity:        3,
	})
	require.NoError(t, err)

	completed, err := svc.CompleteTransfer(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, string(enums.TransferStatusCompleted), completed.Status)
	require.NotNil(t, completed.CompletedAt)

	// Destination had no stock row; completion creates it.
	require.Equal(t, 3, stockQuantity(t, conn, to, "CAR-001"))
	require.Equal(t, enums.EventTransferCompleted, events.events[len(events.events)-1].EventType)

	// A decided order cannot be completed again; the clash maps to 409.
	_, err = svc.CompleteTransfer(ctx, created.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeTransferConflict, appErr.Code())
	require.Equal(t, http.StatusConflict, pkgerrors.MetadataFor(appErr.Code()).HTTPStatus)
}

func TestCancelTransferRestoresSourceStock(t *testing.T) {
	t.Parallel()
	svc, conn, events := newTestService(t)
	ctx := context.Background()

	from := uniqueWarehouseID("W")
	to := uniqueWarehouseID("W")
	mustCreateTestWarehouse(t, conn, from, "Source Yard")
	mustCreateTestWarehouse(t, conn, to, "Destination Yard")
	mustStockCar(t, conn, from, "CAR-001", 4, 0)

	created, err := svc.CreateTransfer(ctx, CreateTransferInput{
		FromWarehouseID: from,
		ToWarehouseID:   to,
		CarID:           "CAR-001",
		Quantity:        3,
	})
	require.NoError(t, err)
	require.Equal(t, 1, stockQuantity(t, conn, from, "CAR-001"))

	cancelled, err := svc.CancelTransfer(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, string(enums.TransferStatusCancelled), cancelled.Status)
	require.Equal(t, 4, stockQuantity(t, conn, from, "CAR-001"))
	require.Equal(t, enums.EventTransferCancelled, events.events[len(events.events)-1].EventType)

	// Completing a cancelled order must fail without touching stock.
	_, err = svc.CompleteTransfer(ctx, created.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeTransferConflict, appErr.Code())

	// A cancelled order cannot be cancelled twice either.
	_, err = svc.CancelTransfer(ctx, created.ID)
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeTransferConflict, appErr.Code())
	require.Equal(t, 4, stockQuantity(t, conn, from, "CAR-001"))
}

func TestGetTransferNotFound(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	_, err := svc.GetTransfer(context.Background(), uuid.New())
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeTransferNotFound, appErr.Code())
}
