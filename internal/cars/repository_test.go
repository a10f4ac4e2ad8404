package cars

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
	"github.com/angelmondragon/dealerstock-backend/pkg/pagination"
)

func TestRepositoryVersionedUpdate(t *testing.T) {
	t.Parallel()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	car := mustCreateTestCar(t, conn, uniqueCarID("CAR"), 5)

	rows, err := repo.UpdateVersioned(ctx, car.CarID, map[string]any{"quantity_in_stock": 7}, car.Version)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	updated, err := repo.FindByID(ctx, car.CarID)
	require.NoError(t, err)
	require.Equal(t, 7, updated.QuantityInStock)
	require.Equal(t, car.Version+1, updated.Version)

	// Stale version must not touch the row.
	rows, err = repo.UpdateVersioned(ctx, car.CarID, map[string]any{"quantity_in_stock": 9}, car.Version)
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)

	unchanged, err := repo.FindByID(ctx, car.CarID)
	require.NoError(t, err)
	require.Equal(t, 7, unchanged.QuantityInStock)
}

func TestRepositoryUpdateFieldsBumpsVersion(t *testing.T) {
	t.Parallel()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	car := mustCreateTestCar(t, conn, uniqueCarID("CAR"), 5)

	rows, err := repo.UpdateFields(ctx, car.CarID, map[string]any{"quantity_in_stock": 4})
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	updated, err := repo.FindByID(ctx, car.CarID)
	require.NoError(t, err)
	require.Equal(t, 4, updated.QuantityInStock)
	require.Equal(t, car.Version+1, updated.Version)

	// A reader holding the old version now loses its guarded write.
	rows, err = repo.UpdateVersioned(ctx, car.CarID, map[string]any{"quantity_in_stock": 9}, car.Version)
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)
}

func TestRepositorySoftDeleteHidesRow(t *testing.T) {
	t.Parallel()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	car := mustCreateTestCar(t, conn, uniqueCarID("CAR"), 3)

	rows, err := repo.SoftDelete(ctx, car.CarID)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	_, err = repo.FindByID(ctx, car.CarID)
	require.Error(t, err)

	// Second delete is a no-op.
	rows, err = repo.SoftDelete(ctx, car.CarID)
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)
}

func TestRepositoryListPaginatesAndFilters(t *testing.T) {
	t.Parallel()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mustCreateTestCar(t, conn, uniqueCarID("LIST"), 2)
	}
	sold := mustCreateTestCar(t, conn, uniqueCarID("LIST"), 0)
	require.NoError(t, conn.Model(sold).Update("status", enums.CarStatusSold).Error)

	page, err := pagination.Normalize(pagination.Params{Page: 1, PageSize: 2})
	require.NoError(t, err)

	rows, total, err := repo.List(ctx, ListInput{Page: page})
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.Len(t, rows, 2)

	status := enums.CarStatusSold
	rows, total, err = repo.List(ctx, ListInput{Status: &status, Page: page})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	require.Equal(t, sold.CarID, rows[0].CarID)
}

func TestRepositorySearchFiltersAndSorts(t *testing.T) {
	t.Parallel()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	cheap := mustCreateTestCar(t, conn, uniqueCarID("SRCH"), 2)
	require.NoError(t, conn.Model(cheap).Updates(map[string]any{"price": decimal.NewFromInt(9000), "model": "Aygo"}).Error)
	mid := mustCreateTestCar(t, conn, uniqueCarID("SRCH"), 2)
	require.NoError(t, conn.Model(mid).Updates(map[string]any{"price": decimal.NewFromInt(18000)}).Error)
	expensive := mustCreateTestCar(t, conn, uniqueCarID("SRCH"), 2)
	require.NoError(t, conn.Model(expensive).Updates(map[string]any{"price": decimal.NewFromInt(46000), "brand": "Lexus"}).Error)

	page, err := pagination.Normalize(pagination.Params{})
	require.NoError(t, err)

	query := "lexus"
	rows, total, err := repo.Search(ctx, SearchInput{Query: &query, Page: page})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, expensive.CarID, rows[0].CarID)

	maxPrice := decimal.NewFromInt(20000)
	rows, _, err = repo.Search(ctx, SearchInput{PriceMax: &maxPrice, SortBy: SortPriceAsc, Page: page})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, cheap.CarID, rows[0].CarID)
	require.Equal(t, mid.CarID, rows[1].CarID)
}

func TestRepositoryAdjustStockRejectsNegative(t *testing.T) {
	t.Parallel()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	car := mustCreateTestCar(t, conn, uniqueCarID("STK"), 2)

	rows, err := repo.AdjustStock(ctx, car.CarID, -2)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	rows, err = repo.AdjustStock(ctx, car.CarID, -1)
	require.NoError(t, err)
	require.EqualValues(t, 0, rows, "stock must not go negative")

	current, err := repo.FindByID(ctx, car.CarID)
	require.NoError(t, err)
	require.Equal(t, 0, current.QuantityInStock)
}
