package reportshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/swalih2233/hr.employee/internal/domain/people"
	"github.com/swalih2233/hr.employee/internal/domain/reports"
	"github.com/swalih2233/hr.employee/internal/transport/http/api"
	"github.com/swalih2233/hr.employee/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(people.RoleManager, people.RoleFounder))
		r.Get("/balances", h.handleBalances)
		r.Get("/balances/pdf", h.handleBalancesExport)
		r.Get("/usage", h.handleUsage)
		r.Get("/dashboard", h.handleDashboard)
	})
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	rows, err := h.Service.Balances(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_balances_failed", "failed to build balance report", rid)
		return
	}
	api.Success(w, rows, rid)
}

func (h *Handler) handleBalancesExport(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	pdfBytes, err := h.Service.BalancePDF(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_export_failed", "failed to export balance report", rid)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=leave-balances.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}

func (h *Handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())

	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 2000 || n > 2200 {
			api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be a four digit year", rid)
			return
		}
		year = n
	}

	rows, err := h.Service.Usage(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_usage_failed", "failed to build usage report", rid)
		return
	}
	api.Success(w, rows, rid)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	counts, err := h.Service.Dashboard(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_dashboard_failed", "failed to build dashboard", rid)
		return
	}
	api.Success(w, counts, rid)
}
