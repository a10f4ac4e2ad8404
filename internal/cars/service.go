package cars

import (
	"context"

	"github.com/angelmondragon/dealerstock-backend/pkg/breaker"
	"github.com/angelmondragon/dealerstock-backend/pkg/cache"
	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dealerstock-backend/pkg/errors"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
	"github.com/angelmondragon/dealerstock-backend/pkg/pagination"
)

// Service exposes car catalog operations.
type Service interface {
	CreateCar(ctx context.Context, input CreateCarInput) (*CarDTO, error)
	GetCar(ctx context.Context, id string) (*CarDTO, error)
	GetCarResilient(ctx context.Context, id string) (*CarDTO, error)
	ListCars(ctx context.Context, input ListInput) (*CarListResult, error)
	SearchCars(ctx context.Context, input SearchInput) (*CarListResult, error)
	UpdateCar(ctx context.Context, id string, input UpdateCarInput) (*CarDTO, error)
	UpdateCarVersioned(ctx context.Context, id string, input VersionedUpdateInput) (*CarDTO, error)
	DeleteCar(ctx context.Context, id string) error
}

type service struct {
	repo      *Repository
	carCache  *cache.Cache[CarDTO]
	caches    *cache.Registry
	dbBreaker *breaker.Breaker
	logg      *logger.Logger
	caching   bool
}

// NewService wires the car service. carCache and caches may be nil when
// caching is disabled; dbBreaker guards the resilient read path.
func NewService(repo *Repository, carCache *cache.Cache[CarDTO], caches *cache.Registry, dbBreaker *breaker.Breaker, logg *logger.Logger, enableCaching bool) Service {
	return &service{
		repo:      repo,
		carCache:  carCache,
		caches:    caches,
		dbBreaker: dbBreaker,
		logg:      logg,
		caching:   enableCaching && carCache != nil,
	}
}

func (s *service) CreateCar(ctx context.Context, input CreateCarInput) (*CarDTO, error) {
	car := &models.Car{
		CarID:           input.CarID,
		Brand:           input.Brand,
		Model:           input.Model,
		Year:            input.Year,
		Color:           input.Color,
		EngineType:      input.EngineType,
		Transmission:    input.Transmission,
		Price:           input.Price,
		QuantityInStock: input.QuantityInStock,
	}
	if input.Status != nil {
		car.Status = *input.Status
	}
	if input.ReorderPoint != nil {
		car.ReorderPoint = *input.ReorderPoint
	}
	if input.EconomicOrderQty != nil {
		car.EconomicOrderQty = *input.EconomicOrderQty
	}

	if err := s.repo.Create(ctx, car); err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeNotFound, "creating car")
	}
	s.invalidate(input.CarID)
	s.logg.Info(s.logg.WithField(ctx, "car_id", car.CarID), "car created")
	return toCarDTO(car), nil
}

func (s *service) GetCar(ctx context.Context, id string) (*CarDTO, error) {
	if s.caching {
		if cached, ok := s.carCache.Get(id); ok {
			return &cached, nil
		}
	}
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeNotFound, "loading car")
	}
	dto := toCarDTO(car)
	if s.caching {
		s.carCache.Set(id, *dto)
	}
	return dto, nil
}

// GetCarResilient reads through the shared database breaker so a degraded
// pool fails fast instead of stacking up queries.
func (s *service) GetCarResilient(ctx context.Context, id string) (*CarDTO, error) {
	var dto *CarDTO
	err := s.dbBreaker.Do(ctx, func(ctx context.Context) error {
		car, lookupErr := s.repo.FindByID(ctx, id)
		if lookupErr != nil {
			return pkgerrors.FromDB(lookupErr, pkgerrors.CodeNotFound, "loading car")
		}
		dto = toCarDTO(car)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) ListCars(ctx context.Context, input ListInput) (*CarListResult, error) {
	page, err := pagination.Normalize(input.Page)
	if err != nil {
		return nil, err
	}
	input.Page = page

	rows, total, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeNotFound, "listing cars")
	}
	return &CarListResult{
		Cars: toCarDTOs(rows),
		Meta: pagination.MetaFor(page, total),
	}, nil
}

func (s *service) SearchCars(ctx context.Context, input SearchInput) (*CarListResult, error) {
	page, err := pagination.Normalize(input.Page)
	if err != nil {
		return nil, err
	}
	input.Page = page

	rows, total, err := s.repo.Search(ctx, input)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeNotFound, "searching cars")
	}
	return &CarListResult{
		Cars: toCarDTOs(rows),
		Meta: pagination.MetaFor(page, total),
	}, nil
}

func (s *service) UpdateCar(ctx context.Context, id string, input UpdateCarInput) (*CarDTO, error) {
	updates := input.updates()
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	rows, err := s.repo.UpdateFields(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeNotFound, "updating car")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "car %s not found", id)
	}

	s.invalidate(id)
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeNotFound, "loading car")
	}
	return toCarDTO(car), nil
}

// UpdateCarVersioned rejects writes whose expected version no longer
// matches the stored row.
func (s *service) UpdateCarVersioned(ctx context.Context, id string, input VersionedUpdateInput) (*CarDTO, error) {
	updates := input.updates()
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	rows, err := s.repo.UpdateVersioned(ctx, id, updates, input.ExpectedVersion)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeNotFound, "updating car")
	}
	if rows == 0 {
		// Zero rows is either a missing car or a lost race.
		if _, lookupErr := s.repo.FindByID(ctx, id); lookupErr != nil {
			return nil, pkgerrors.FromDB(lookupErr, pkgerrors.CodeNotFound, "loading car")
		}
		return nil, pkgerrors.New(pkgerrors.CodeConcurrentModification,
			"car %s was modified concurrently, reload and retry", id)
	}

	s.invalidate(id)
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromDB(err, pkgerrors.CodeNotFound, "loading car")
	}
	return toCarDTO(car), nil
}

func (s *service) DeleteCar(ctx context.Context, id string) error {
	rows, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return pkgerrors.FromDB(err, pkgerrors.CodeNotFound, "deleting car")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "car %s not found", id)
	}
	s.invalidate(id)
	s.logg.Info(s.logg.WithField(ctx, "car_id", id), "car deleted")
	return nil
}

func (s *service) invalidate(id string) {
	if s.caches != nil {
		s.caches.InvalidateCar(id)
	}
}

func (in UpdateCarInput) updates() map[string]any {
	updates := map[string]any{}
	if in.Brand != nil {
		updates["brand"] = *in.Brand
	}
	if in.Model != nil {
		updates["model"] = *in.Model
	}
	if in.Year != nil {
		updates["year"] = *in.Year
	}
	if in.Color != nil {
		updates["color"] = *in.Color
	}
	if in.EngineType != nil {
		updates["engine_type"] = *in.EngineType
	}
	if in.Transmission != nil {
		updates["transmission"] = *in.Transmission
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.QuantityInStock != nil {
		updates["quantity_in_stock"] = *in.QuantityInStock
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.ReorderPoint != nil {
		updates["reorder_point"] = *in.ReorderPoint
	}
	return updates
}
