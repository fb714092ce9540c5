package controllers

import (
	"net/http"

	"github.com/orlie/affiliatehub-backend/api/responses"
	"github.com/orlie/affiliatehub-backend/api/validators"
	analyticsvc "github.com/orlie/affiliatehub-backend/internal/analytics"
	"github.com/orlie/affiliatehub-backend/pkg/logger"
)

// AdminDashboard returns claim totals, status counts and the daily activity
// histogram.
func AdminDashboard(svc analyticsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		windowDays, err := validators.ParseQueryInt(r, "window_days", analyticsvc.DefaultWindowDays, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dashboard, err := svc.Dashboard(r.Context(), windowDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}
