package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

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

func TestCreateReservationHoldsStock(t *testing.T) {
	t.Parallel()
	svc, conn, events := newTestService(t)
	ctx := context.Background()

	carID := uniqueCarID("RSV")
	mustCreateTestCar(t, conn, carID, 3)

	first, err := svc.CreateReservation(ctx, carID, CreateReservationInput{
		Quantity:   2,
		ReservedBy: "dealer-42",
	})
	require.NoError(t, err)
	require.Equal(t, string(enums.ReservationStatusPending), first.Status)
	require.Greater(t, first.TimeRemainingSeconds, int64(0))
	require.Len(t, events.events, 1)
	require.Equal(t, enums.EventReservationCreated, events.events[0].EventType)

	// Only one unit left after the pending hold.
	_, err = svc.CreateReservation(ctx, carID, CreateReservationInput{
		Quantity:   2,
		ReservedBy: "dealer-43",
	})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeInsufficientStock, appErr.Code())
	details, ok := appErr.Details().(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 2, details["requested"])
	require.EqualValues(t, 1, details["available"])

	second, err := svc.CreateReservation(ctx, carID, CreateReservationInput{
		Quantity:   1,
		ReservedBy: "dealer-43",
	})
	require.NoError(t, err)
	require.Equal(t, 1, second.Quantity)
}

func TestCreateReservationUnknownCar(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	_, err := svc.CreateReservation(context.Background(), "CAR-MISSING", CreateReservationInput{
		Quantity:   1,
		ReservedBy: "dealer-1",
	})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestCreateReservationClampsTTL(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	carID := uniqueCarID("TTL")
	mustCreateTestCar(t, conn, carID, 5)

	tooShort := 1
	created, err := svc.CreateReservation(ctx, carID, CreateReservationInput{
		Quantity:   1,
		ReservedBy: "dealer-1",
		TTLMinutes: &tooShort,
	})
	require.NoError(t, err)
	require.Equal(t, base.Add(MinTTLMinutes*time.Minute), created.ExpiresAt.UTC())

	tooLong := 10000
	created, err = svc.CreateReservation(ctx, carID, CreateReservationInput{
		Quantity:   1,
		ReservedBy: "dealer-1",
		TTLMinutes: &tooLong,
	})
	require.NoError(t, err)
	require.Equal(t, base.Add(MaxTTLMinutes*time.Minute), created.ExpiresAt.UTC())

	created, err = svc.CreateReservation(ctx, carID, CreateReservationInput{
		Quantity:   1,
		ReservedBy: "dealer-1",
	})
	require.NoError(t, err)
	require.Equal(t, base.Add(DefaultTTLMinutes*time.Minute), created.ExpiresAt.UTC())
}

func TestConfirmReservationLifecycle(t *testing.T) {
	t.Parallel()
	svc, conn, events := newTestService(t)
	ctx := context.Background()

	carID := uniqueCarID("CNF")
	mustCreateTestCar(t, conn, carID, 2)

	created, err := svc.CreateReservation(ctx, carID, CreateReservationInput{
		Quantity:   1,
		ReservedBy: "dealer-7",
	})
	require.NoError(t, err)

	confirmed, err := svc.ConfirmReservation(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, string(enums.ReservationStatusConfirmed), confirmed.Status)
	require.Len(t, events.events, 2)
	require.Equal(t, enums.EventReservationConfirmed, events.events[1].EventType)

	// A decided reservation cannot be confirmed again.
	_, err = svc.ConfirmReservation(ctx, created.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeBusinessRule, appErr.Code())
}

func TestConfirmExpiredReservation(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	carID := uniqueCarID("EXP")
	mustCreateTestCar(t, conn, carID, 2)

	created, err := svc.CreateReservation(ctx, carID, CreateReservationInput{
		Quantity:   1,
		ReservedBy: "dealer-7",
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(16 * time.Minute) }

	_, err = svc.ConfirmReservation(ctx, created.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeReservationExpired, appErr.Code())
}

func TestCancelReservation(t *testing.T) {
	t.Parallel()
	svc, conn, events := newTestService(t)
	ctx := context.Background()

	carID := uniqueCarID("CXL")
	mustCreateTestCar(t, conn, carID, 2)

	created, err := svc.CreateReservation(ctx, carID, CreateReservationInput{
		Quantity:   2,
		ReservedBy: "dealer-9",
	})
	require.NoError(t, err)

	require.NoError(t, svc.CancelReservation(ctx, created.ID))
	require.Equal(t, enums.EventReservationCancelled, events.events[len(events.events)-1].EventType)

	got, err := svc.GetReservation(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, string(enums.ReservationStatusCancelled), got.Status)

	// Cancelling released the hold, so the stock is reservable again.
	_, err = svc.CreateReservation(ctx, carID, CreateReservationInput{
		Quantity:   2,
		ReservedBy: "dealer-10",
	})
	require.NoError(t, err)
}

func TestCancelReservationTwice(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	carID := uniqueCarID("CX2")
	mustCreateTestCar(t, conn, carID, 2)

	created, err := svc.CreateReservation(ctx, carID, CreateReservationInput{
		Quantity:   1,
		ReservedBy: "dealer-9",
	})
	require.NoError(t, err)

	require.NoError(t, svc.CancelReservation(ctx, created.ID))

	err = svc.CancelReservation(ctx, created.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeReservationNotFound, appErr.Code())
}

func TestCancelConfirmedReservation(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	carID := uniqueCarID("CXC")
	mustCreateTestCar(t, conn, carID, 2)

	created, err := svc.CreateReservation(ctx, carID, CreateReservationInput{
		Quantity:   1,
		ReservedBy: "dealer-9",
	})
	require.NoError(t, err)

	_, err = svc.ConfirmReservation(ctx, created.ID)
	require.NoError(t, err)

	err = svc.CancelReservation(ctx, created.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeReservationNotFound, appErr.Code())

	// The sale stands.
	got, err := svc.GetReservation(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, string(enums.ReservationStatusConfirmed), got.Status)
}

func TestCancelUnknownReservation(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	err := svc.CancelReservation(context.Background(), uuid.New())
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeReservationNotFound, appErr.Code())
}

func TestListForCarOrdersNewestFirst(t *testing.T) {
	t.Parallel()
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	carID := uniqueCarID("LST")
	mustCreateTestCar(t, conn, carID, 10)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateReservation(ctx, carID, CreateReservationInput{
			Quantity:   1,
			ReservedBy: "dealer-1",
		})
		require.NoError(t, err)
	}

	listed, err := svc.ListForCar(ctx, carID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for _, dto := range listed {
		require.Equal(t, carID, dto.CarID)
	}
}
