package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dealerstock-backend/api/responses"
	"github.com/angelmondragon/dealerstock-backend/api/validators"
	warehousesvc "github.com/angelmondragon/dealerstock-backend/internal/warehouses"
	pkgerrors "github.com/angelmondragon/dealerstock-backend/pkg/errors"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
)

// CreateWarehouse registers a new warehouse.
func CreateWarehouse(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createWarehouseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validateWarehouseID(payload.WarehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouse, err := svc.CreateWarehouse(r.Context(), warehousesvc.CreateWarehouseInput{
			WarehouseID:   strings.TrimSpace(payload.WarehouseID),
			Name:          strings.TrimSpace(payload.Name),
			Location:      strings.TrimSpace(payload.Location),
			Latitude:      payload.Latitude,
			Longitude:     payload.Longitude,
			CapacityTotal: payload.CapacityTotal,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, warehouse)
	}
}

// ListWarehouses returns active warehouses sorted by name.
func ListWarehouses(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListWarehouses(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// GetWarehouse returns a warehouse plus its stock locations.
func GetWarehouse(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := warehouseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		warehouse, err := svc.GetWarehouse(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, warehouse)
	}
}

// CreateTransfer opens a stock transfer and deducts the source atomically.
func CreateTransfer(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createTransferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validateWarehouseID(payload.FromWarehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validateWarehouseID(payload.ToWarehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validateCarID(payload.CarID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.CreateTransfer(r.Context(), warehousesvc.CreateTransferInput{
			FromWarehouseID: strings.TrimSpace(payload.FromWarehouseID),
			ToWarehouseID:   strings.TrimSpace(payload.ToWarehouseID),
			CarID:           strings.TrimSpace(payload.CarID),
			Quantity:        payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, transfer)
	}
}

// GetTransfer returns a transfer order by uuid.
func GetTransfer(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := transferIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transfer, err := svc.GetTransfer(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transfer)
	}
}

// CompleteTransfer credits the destination and closes the order.
func CompleteTransfer(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := transferIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transfer, err := svc.CompleteTransfer(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transfer)
	}
}

// CancelTransfer aborts an open order and credits the source back.
func CancelTransfer(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := transferIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transfer, err := svc.CancelTransfer(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transfer)
	}
}

type createWarehouseRequest struct {
	WarehouseID   string   `json:"warehouse_id" validate:"required,min=4"`
	Name          string   `json:"name" validate:"required,max=200"`
	Location      string   `json:"location" validate:"required,max=200"`
	Latitude      *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	CapacityTotal int      `json:"capacity_total" validate:"required,min=1"`
}

type createTransferRequest struct {
	FromWarehouseID string `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string `json:"to_warehouse_id" validate:"required"`
	CarID           string `json:"car_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"required,min=1"`
}

func warehouseIDParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "warehouseId"))
	if err := validateWarehouseID(id); err != nil {
		return "", err
	}
	return id, nil
}

func validateWarehouseID(id string) error {
	id = strings.TrimSpace(id)
	if len(id) < 4 || !strings.HasPrefix(id, "W") {
		return pkgerrors.New(pkgerrors.CodeValidation, "warehouse id must start with W and be at least 4 characters").
			WithDetails(map[string]any{"field": "warehouse_id"})
	}
	return nil
}

func transferIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "transferId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transfer id")
	}
	return id, nil
}
