// Package dashboard exposes the read-only summary pages over HTTP.
package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/queryset-api/internal/report"
	"github.com/aanand-mishra/queryset-api/internal/utils/response"
)

// Dashboard handles GET /api/dashboard.
func Dashboard(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("building dashboard")

		d, err := svc.Dashboard()
		if err != nil {
			slog.Error("error building dashboard", slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, d)
	}
}

// Demo handles GET /api/demo.
func Demo(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("building query demo")

		d, err := svc.Demo()
		if err != nil {
			slog.Error("error building demo", slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, d)
	}
}
