package warehouses

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
)

// Repository provides warehouse, stock location and transfer persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) CreateWarehouse(ctx context.Context, row *models.Warehouse) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) FindWarehouse(ctx context.Context, id string) (*models.Warehouse, error) {
	var row models.Warehouse
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListActive returns active sites ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]models.Warehouse, error) {
	var rows []models.Warehouse
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) StockForWarehouse(ctx context.Context, warehouseID string) ([]models.StockLocation, error) {
	var rows []models.StockLocation
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Order("car_id ASC").
		Find(&rows).Error
	return rows, err
}

// LockStockLocation loads the per-warehouse stock row FOR UPDATE.
func (r *Repository) LockStockLocation(ctx context.Context, warehouseID, carID string) (*models.StockLocation, error) {
	var row models.StockLocation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("warehouse_id = ? AND car_id = ?", warehouseID, carID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// AdjustStock moves the stock quantity by delta, refusing to go negative.
func (r *Repository) AdjustStock(ctx context.Context, warehouseID, carID string, delta int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.StockLocation{}).
		Where("warehouse_id = ? AND car_id = ? AND quantity + ? >= 0", warehouseID, carID, delta).
		Updates(map[string]any{
			"quantity":     gorm.Expr("quantity + ?", delta),
			"last_updated": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

// CreditStock adds quantity to the destination, creating the stock row on
// first delivery.
func (r *Repository) CreditStock(ctx context.Context, warehouseID, carID string, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.StockLocation{}).
		Where("warehouse_id = ? AND car_id = ?", warehouseID, carID).
		Updates(map[string]any{
			"quantity":     gorm.Expr("quantity + ?", quantity),
			"last_updated": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&models.StockLocation{
		WarehouseID: warehouseID,
		CarID:       carID,
		Quantity:    quantity,
	}).Error
}

func (r *Repository) CreateTransfer(ctx context.Context, row *models.TransferOrder) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) FindTransfer(ctx context.Context, id uuid.UUID) (*models.TransferOrder, error) {
	var row models.TransferOrder
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CompleteTransfer flips an in-transit order to Completed. Returns the
// number of rows decided.
func (r *Repository) CompleteTransfer(ctx context.Context, id uuid.UUID, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.TransferOrder{}).
		Where("id = ? AND status = ?", id, enums.TransferStatusInTransit).
		Updates(map[string]any{
			"status":       enums.TransferStatusCompleted,
			"completed_at": now,
		})
	return res.RowsAffected, res.Error
}

// CancelTransfer cancels an undecided order. Returns the number of rows
// decided.
func (r *Repository) CancelTransfer(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.TransferOrder{}).
		Where("id = ? AND status IN ?", id, []enums.TransferStatus{
			enums.TransferStatusPending,
			enums.TransferStatusInTransit,
		}).
		Update("status", enums.TransferStatusCancelled)
	return res.RowsAffected, res.Error
}
