package cars

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
)

// Repository wires car persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a new car row.
func (r *Repository) Create(ctx context.Context, car *models.Car) error {
	return r.db.WithContext(ctx).Create(car).Error
}

// FindByID loads the car, excluding soft-deleted rows.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).First(&car, "car_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

// FindByIDForUpdate loads the car under a row lock. Must run inside a
// transaction.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id string) (*models.Car, error) {
	var car models.Car
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&car, "car_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &car, nil
}

// List returns a page of cars plus the unfiltered total for the filters.
func (r *Repository) List(ctx context.Context, input ListInput) ([]models.Car, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Car{})
	if input.Status != nil {
		query = query.Where("status = ?", *input.Status)
	}
	if input.Brand != nil {
		query = query.Where("brand = ?", *input.Brand)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Car
	err := query.
		Order("created_at DESC").
		Order("car_id ASC").
		Limit(input.Page.PageSize).
		Offset(input.Page.Offset()).
		Find(&rows).Error
	return rows, total, err
}

// Search applies free-text and range filters with the requested sort order.
func (r *Repository) Search(ctx context.Context, input SearchInput) ([]models.Car, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Car{})

	if input.Query != nil {
		pattern := "%" + strings.ToLower(strings.TrimSpace(*input.Query)) + "%"
		query = query.Where(
			"LOWER(brand) LIKE ? OR LOWER(model) LIKE ? OR LOWER(COALESCE(color, '')) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if input.Brand != nil {
		query = query.Where("brand = ?", *input.Brand)
	}
	if input.YearMin != nil {
		query = query.Where("year >= ?", *input.YearMin)
	}
	if input.YearMax != nil {
		query = query.Where("year <= ?", *input.YearMax)
	}
	if input.PriceMin != nil {
		query = query.Where("price >= ?", *input.PriceMin)
	}
	if input.PriceMax != nil {
		query = query.Where("price <= ?", *input.PriceMax)
	}
	if input.Status != nil {
		query = query.Where("status = ?", *input.Status)
	}
	if input.EngineType != nil {
		query = query.Where("engine_type = ?", *input.EngineType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Car
	err := query.
		Order(searchOrder(input.SortBy)).
		Limit(input.Page.PageSize).
		Offset(input.Page.Offset()).
		Find(&rows).Error
	return rows, total, err
}

func searchOrder(sortBy string) string {
	switch sortBy {
	case SortPriceAsc:
		return "price ASC, car_id ASC"
	case SortPriceDesc:
		return "price DESC, car_id ASC"
	case SortYearAsc:
		return "year ASC, car_id ASC"
	case SortYearDesc:
		return "year DESC, car_id ASC"
	default:
		return "created_at DESC, car_id ASC"
	}
}

// UpdateFields applies a merge patch without a version guard. The version
// still bumps so every write is visible to optimistic readers. Returns the
// number of rows touched so callers can distinguish missing rows.
func (r *Repository) UpdateFields(ctx context.Context, id string, updates map[string]any) (int64, error) {
	updates["version"] = gorm.Expr("version + 1")
	res := r.db.WithContext(ctx).
		Model(&models.Car{}).
		Where("car_id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// UpdateVersioned applies a merge patch guarded by the expected version.
// Zero rows means either the car is gone or the version moved.
func (r *Repository) UpdateVersioned(ctx context.Context, id string, updates map[string]any, expectedVersion int64) (int64, error) {
	updates["version"] = gorm.Expr("version + 1")
	res := r.db.WithContext(ctx).
		Model(&models.Car{}).
		Where("car_id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// SoftDelete flags the car as removed, keeping history rows intact.
func (r *Repository) SoftDelete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("car_id = ?", id).Delete(&models.Car{})
	return res.RowsAffected, res.Error
}

// AdjustStock applies a signed delta to quantity_in_stock.
func (r *Repository) AdjustStock(ctx context.Context, id string, delta int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Car{}).
		Where("car_id = ? AND quantity_in_stock + ? >= 0", id, delta).
		Updates(map[string]any{
			"quantity_in_stock": gorm.Expr("quantity_in_stock + ?", delta),
		})
	return res.RowsAffected, res.Error
}
