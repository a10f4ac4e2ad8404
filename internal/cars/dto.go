package cars

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
	"github.com/angelmondragon/dealerstock-backend/pkg/pagination"
)

// CarDTO is the wire representation of a car listing.
type CarDTO struct {
	CarID            string          `json:"car_id"`
	Brand            string          `json:"brand"`
	Model            string          `json:"model"`
	Year             int             `json:"year"`
	Color            *string         `json:"color,omitempty"`
	EngineType       string          `json:"engine_type"`
	Transmission     *string         `json:"transmission,omitempty"`
	Price            decimal.Decimal `json:"price"`
	QuantityInStock  int             `json:"quantity_in_stock"`
	Status           string          `json:"status"`
	ReorderPoint     int             `json:"reorder_point"`
	EconomicOrderQty int             `json:"economic_order_qty"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func toCarDTO(car *models.Car) *CarDTO {
	return &CarDTO{
		CarID:            car.CarID,
		Brand:            car.Brand,
		Model:            car.Model,
		Year:             car.Year,
		Color:            car.Color,
		EngineType:       car.EngineType.String(),
		Transmission:     car.Transmission,
		Price:            car.Price,
		QuantityInStock:  car.QuantityInStock,
		Status:           car.Status.String(),
		ReorderPoint:     car.ReorderPoint,
		EconomicOrderQty: car.EconomicOrderQty,
		Version:          car.Version,
		CreatedAt:        car.CreatedAt,
		UpdatedAt:        car.UpdatedAt,
	}
}

// DTOsFromModels converts rows for packages that report on cars.
func DTOsFromModels(rows []models.Car) []CarDTO {
	return toCarDTOs(rows)
}

func toCarDTOs(rows []models.Car) []CarDTO {
	out := make([]CarDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toCarDTO(&rows[i]))
	}
	return out
}

// CreateCarInput holds the validated payload to register a car.
type CreateCarInput struct {
	CarID            string
	Brand            string
	Model            string
	Year             int
	Color            *string
	EngineType       enums.EngineType
	Transmission     *string
	Price            decimal.Decimal
	QuantityInStock  int
	Status           *enums.CarStatus
	ReorderPoint     *int
	EconomicOrderQty *int
}

// UpdateCarInput is a merge patch: nil fields keep the stored value.
type UpdateCarInput struct {
	Brand           *string
	Model           *string
	Year            *int
	Color           *string
	EngineType      *enums.EngineType
	Transmission    *string
	Price           *decimal.Decimal
	QuantityInStock *int
	Status          *enums.CarStatus
	ReorderPoint    *int
}

// VersionedUpdateInput carries the optimistic concurrency token.
type VersionedUpdateInput struct {
	UpdateCarInput
	ExpectedVersion int64
}

// ListInput filters the paginated car listing.
type ListInput struct {
	Status *enums.CarStatus
	Brand  *string
	Page   pagination.Params
}

// Search sort orders accepted by the search endpoint.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortYearAsc   = "year_asc"
	SortYearDesc  = "year_desc"
)

// SearchInput captures the free-text search with range filters.
type SearchInput struct {
	Query      *string
	Brand      *string
	YearMin    *int
	YearMax    *int
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
	Status     *enums.CarStatus
	EngineType *enums.EngineType
	SortBy     string
	Page       pagination.Params
}

// CarListResult is a page of cars plus the pagination summary.
type CarListResult struct {
	Cars []CarDTO
	Meta pagination.Meta
}
