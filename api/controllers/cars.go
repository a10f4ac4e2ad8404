package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealerstock-backend/api/responses"
	"github.com/angelmondragon/dealerstock-backend/api/validators"
	carsvc "github.com/angelmondragon/dealerstock-backend/internal/cars"
	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealerstock-backend/pkg/errors"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
	"github.com/angelmondragon/dealerstock-backend/pkg/pagination"
)

const minCarYear = 1886

// CreateCar registers a new car in the catalog.
func CreateCar(svc carsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCarRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		car, err := svc.CreateCar(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, car)
	}
}

// GetCar returns a single car by its dealership id.
func GetCar(svc carsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := carIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		car, err := svc.GetCar(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, car)
	}
}

// GetCarResilient serves the same read through the database circuit breaker.
func GetCarResilient(svc carsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := carIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		car, err := svc.GetCarResilient(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, car)
	}
}

// ListCars returns the paginated catalog with optional status/brand filters.
func ListCars(svc carsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := carsvc.ListInput{Page: page}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseCarStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			input.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("brand")); raw != "" {
			input.Brand = &raw
		}

		result, err := svc.ListCars(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePaginated(w, result.Cars, result.Meta)
	}
}

// SearchCars runs the free-text search with range filters and sort orders.
func SearchCars(svc carsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := searchInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SearchCars(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePaginated(w, result.Cars, result.Meta)
	}
}

// UpdateCar applies a merge patch to the car.
func UpdateCar(svc carsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := carIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCarRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		car, err := svc.UpdateCar(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, car)
	}
}

// UpdateCarVersioned applies the patch only when expected_version still
// matches the stored row.
func UpdateCarVersioned(svc carsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := carIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload versionedUpdateCarRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		patch, err := payload.updateCarRequest.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		car, err := svc.UpdateCarVersioned(r.Context(), id, carsvc.VersionedUpdateInput{
			UpdateCarInput:  patch,
			ExpectedVersion: payload.ExpectedVersion,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, car)
	}
}

// DeleteCar soft deletes the car.
func DeleteCar(svc carsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := carIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteCar(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type createCarRequest struct {
	CarID            string          `json:"car_id" validate:"required,min=5"`
	Brand            string          `json:"brand" validate:"required,max=100"`
	Model            string          `json:"model" validate:"required,max=100"`
	Year             int             `json:"year" validate:"required"`
	Color            *string         `json:"color,omitempty" validate:"omitempty,max=50"`
	EngineType       string          `json:"engine_type" validate:"required"`
	Transmission     *string         `json:"transmission,omitempty" validate:"omitempty,max=50"`
	Price            decimal.Decimal `json:"price" validate:"required"`
	QuantityInStock  int             `json:"quantity_in_stock" validate:"min=0"`
	Status           *string         `json:"status,omitempty"`
	ReorderPoint     *int            `json:"reorder_point,omitempty" validate:"omitempty,min=0"`
	EconomicOrderQty *int            `json:"economic_order_qty,omitempty" validate:"omitempty,min=1"`
}

func (req createCarRequest) toCreateInput() (carsvc.CreateCarInput, error) {
	if err := validateCarID(req.CarID); err != nil {
		return carsvc.CreateCarInput{}, err
	}
	if err := validateYear(req.Year); err != nil {
		return carsvc.CreateCarInput{}, err
	}
	if req.Price.IsNegative() {
		return carsvc.CreateCarInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	engine, err := enums.ParseEngineType(strings.TrimSpace(req.EngineType))
	if err != nil {
		return carsvc.CreateCarInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid engine type")
	}

	input := carsvc.CreateCarInput{
		CarID:            strings.TrimSpace(req.CarID),
		Brand:            strings.TrimSpace(req.Brand),
		Model:            strings.TrimSpace(req.Model),
		Year:             req.Year,
		Color:            req.Color,
		EngineType:       engine,
		Transmission:     req.Transmission,
		Price:            req.Price,
		QuantityInStock:  req.QuantityInStock,
		ReorderPoint:     req.ReorderPoint,
		EconomicOrderQty: req.EconomicOrderQty,
	}
	if req.Status != nil {
		status, parseErr := enums.ParseCarStatus(strings.TrimSpace(*req.Status))
		if parseErr != nil {
			return carsvc.CreateCarInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status")
		}
		input.Status = &status
	}
	return input, nil
}

type updateCarRequest struct {
	Brand           *string          `json:"brand,omitempty" validate:"omitempty,max=100"`
	Model           *string          `json:"model,omitempty" validate:"omitempty,max=100"`
	Year            *int             `json:"year,omitempty"`
	Color           *string          `json:"color,omitempty" validate:"omitempty,max=50"`
	EngineType      *string          `json:"engine_type,omitempty"`
	Transmission    *string          `json:"transmission,omitempty" validate:"omitempty,max=50"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	QuantityInStock *int             `json:"quantity_in_stock,omitempty" validate:"omitempty,min=0"`
	Status          *string          `json:"status,omitempty"`
	ReorderPoint    *int             `json:"reorder_point,omitempty" validate:"omitempty,min=0"`
}

type versionedUpdateCarRequest struct {
	updateCarRequest
	ExpectedVersion int64 `json:"expected_version" validate:"min=1"`
}

func (req updateCarRequest) toUpdateInput() (carsvc.UpdateCarInput, error) {
	input := carsvc.UpdateCarInput{
		Brand:           req.Brand,
		Model:           req.Model,
		Year:            req.Year,
		Color:           req.Color,
		Transmission:    req.Transmission,
		Price:           req.Price,
		QuantityInStock: req.QuantityInStock,
		ReorderPoint:    req.ReorderPoint,
	}
	if req.Year != nil {
		if err := validateYear(*req.Year); err != nil {
			return carsvc.UpdateCarInput{}, err
		}
	}
	if req.Price != nil && req.Price.IsNegative() {
		return carsvc.UpdateCarInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if req.EngineType != nil {
		engine, err := enums.ParseEngineType(strings.TrimSpace(*req.EngineType))
		if err != nil {
			return carsvc.UpdateCarInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid engine type")
		}
		input.EngineType = &engine
	}
	if req.Status != nil {
		status, err := enums.ParseCarStatus(strings.TrimSpace(*req.Status))
		if err != nil {
			return carsvc.UpdateCarInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}
	return input, nil
}

func searchInputFromQuery(r *http.Request) (carsvc.SearchInput, error) {
	page, err := pageParams(r)
	if err != nil {
		return carsvc.SearchInput{}, err
	}

	q := r.URL.Query()
	input := carsvc.SearchInput{SortBy: carsvc.SortRelevance, Page: page}

	if raw := strings.TrimSpace(q.Get("q")); raw != "" {
		input.Query = &raw
	}
	if raw := strings.TrimSpace(q.Get("brand")); raw != "" {
		input.Brand = &raw
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, parseErr := enums.ParseCarStatus(raw)
		if parseErr != nil {
			return carsvc.SearchInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter")
		}
		input.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("engine_type")); raw != "" {
		engine, parseErr := enums.ParseEngineType(raw)
		if parseErr != nil {
			return carsvc.SearchInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid engine type filter")
		}
		input.EngineType = &engine
	}
	if value, parseErr := optionalQueryInt(r, "year_min"); parseErr != nil {
		return carsvc.SearchInput{}, parseErr
	} else if value != nil {
		input.YearMin = value
	}
	if value, parseErr := optionalQueryInt(r, "year_max"); parseErr != nil {
		return carsvc.SearchInput{}, parseErr
	} else if value != nil {
		input.YearMax = value
	}
	if value, parseErr := optionalQueryDecimal(r, "price_min"); parseErr != nil {
		return carsvc.SearchInput{}, parseErr
	} else if value != nil {
		input.PriceMin = value
	}
	if value, parseErr := optionalQueryDecimal(r, "price_max"); parseErr != nil {
		return carsvc.SearchInput{}, parseErr
	} else if value != nil {
		input.PriceMax = value
	}

	if raw := strings.TrimSpace(q.Get("sort_by")); raw != "" {
		switch raw {
		case carsvc.SortRelevance, carsvc.SortPriceAsc, carsvc.SortPriceDesc, carsvc.SortYearAsc, carsvc.SortYearDesc:
			input.SortBy = raw
		default:
			return carsvc.SearchInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported sort_by %q", raw)
		}
	}
	return input, nil
}

func carIDParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "carId"))
	if err := validateCarID(id); err != nil {
		return "", err
	}
	return id, nil
}

func validateCarID(id string) error {
	id = strings.TrimSpace(id)
	if len(id) < 5 || !strings.HasPrefix(id, "C") {
		return pkgerrors.New(pkgerrors.CodeValidation, "car id must start with C and be at least 5 characters").
			WithDetails(map[string]any{"field": "car_id"})
	}
	return nil
}

func validateYear(year int) error {
	maxYear := time.Now().Year() + 1
	if year < minCarYear || year > maxYear {
		return pkgerrors.New(pkgerrors.CodeValidation, "year must be between %d and %d", minCarYear, maxYear).
			WithDetails(map[string]any{"field": "year"})
	}
	return nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return pagination.Params{}, err
	}
	size, err := validators.ParseQueryInt(r, "page_size", pagination.DefaultPageSize, 1, pagination.MaxPageSize)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Normalize(pagination.Params{Page: page, PageSize: size})
}

func optionalQueryInt(r *http.Request, key string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").
			WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

func optionalQueryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a decimal").
			WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}
