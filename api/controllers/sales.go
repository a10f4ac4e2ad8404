package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealerstock-backend/api/middleware"
	"github.com/angelmondragon/dealerstock-backend/api/responses"
	"github.com/angelmondragon/dealerstock-backend/api/validators"
	salesvc "github.com/angelmondragon/dealerstock-backend/internal/sales"
	pkgerrors "github.com/angelmondragon/dealerstock-backend/pkg/errors"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
)

// ProcessSale converts a pending reservation into a completed sale.
func ProcessSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload processSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservationID, err := uuid.Parse(payload.ReservationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reservation id"))
			return
		}

		soldBy := strings.TrimSpace(payload.SoldBy)
		if soldBy == "" {
			soldBy = middleware.UserIDFromContext(r.Context())
		}
		if soldBy == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sold_by is required").
				WithDetails(map[string]any{"field": "sold_by"}))
			return
		}

		receipt, err := svc.ProcessSale(r.Context(), reservationID, soldBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

type processSaleRequest struct {
	ReservationID string `json:"reservation_id" validate:"required"`
	SoldBy        string `json:"sold_by,omitempty" validate:"omitempty,max=100"`
}
