package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dealerstock-backend/api/responses"
	"github.com/angelmondragon/dealerstock-backend/api/validators"
	reservationsvc "github.com/angelmondragon/dealerstock-backend/internal/reservations"
	pkgerrors "github.com/angelmondragon/dealerstock-backend/pkg/errors"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
)

// CreateReservation places a timed hold on a car's stock.
func CreateReservation(svc reservationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carID, err := carIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createReservationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := payload.validateBounds(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.CreateReservation(r.Context(), carID, reservationsvc.CreateReservationInput{
			Quantity:   payload.Quantity,
			ReservedBy: strings.TrimSpace(payload.ReservedBy),
			TTLMinutes: payload.TTLMinutes,
			Metadata:   payload.Metadata,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

// ListCarReservations returns every hold on a car, newest first.
func ListCarReservations(svc reservationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carID, err := carIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListForCar(r.Context(), carID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// GetReservation returns a single hold by uuid.
func GetReservation(svc reservationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := reservationIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reservation, err := svc.GetReservation(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

// ConfirmReservation flips a pending, unexpired hold to Confirmed.
func ConfirmReservation(svc reservationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := reservationIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reservation, err := svc.ConfirmReservation(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

// CancelReservation releases the hold.
func CancelReservation(svc reservationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := reservationIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.CancelReservation(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type createReservationRequest struct {
	Quantity   int             `json:"quantity" validate:"required,min=1"`
	ReservedBy string          `json:"reserved_by" validate:"required,min=1,max=100"`
	TTLMinutes *int            `json:"ttl_minutes,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

func (req createReservationRequest) validateBounds() error {
	if req.TTLMinutes != nil &&
		(*req.TTLMinutes < reservationsvc.MinTTLMinutes || *req.TTLMinutes > reservationsvc.MaxTTLMinutes) {
		return pkgerrors.New(pkgerrors.CodeValidation, "ttl_minutes must be between %d and %d",
			reservationsvc.MinTTLMinutes, reservationsvc.MaxTTLMinutes).
			WithDetails(map[string]any{"field": "ttl_minutes"})
	}
	return nil
}

func reservationIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "reservationId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reservation id")
	}
	return id, nil
}
