package controllers

import (
	"net/http"

	"github.com/angelmondragon/dealerstock-backend/api/responses"
	"github.com/angelmondragon/dealerstock-backend/api/validators"
	inventorysvc "github.com/angelmondragon/dealerstock-backend/internal/inventory"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
)

// AnalyticsDashboard returns fleet totals grouped by status.
func AnalyticsDashboard(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AnalyticsDepreciation lists available cars older than the depreciation
// horizon, oldest first.
func AnalyticsDepreciation(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.DepreciationReport(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AnalyticsLowStock lists cars under the stock threshold.
func AnalyticsLowStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var threshold *int
		if raw := r.URL.Query().Get("threshold"); raw != "" {
			value, err := validators.ParseQueryInt(r, "threshold", inventorysvc.DefaultLowStockThreshold, 1, 1000)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			threshold = &value
		}

		rows, err := svc.LowStockReport(r.Context(), threshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// InventoryAlerts runs the reorder analysis over recent sales and holds.
func InventoryAlerts(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alerts, err := svc.StockAlerts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alerts)
	}
}

// InventoryVelocity reports per-car sales velocity over a trailing window.
func InventoryVelocity(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := validators.ParseQueryInt(r, "days", inventorysvc.DefaultVelocityWindowDays, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.SalesVelocity(r.Context(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// InventoryMetrics returns the single-row fleet aggregate.
func InventoryMetrics(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics, err := svc.Metrics(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, metrics)
	}
}
