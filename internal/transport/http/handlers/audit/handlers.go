package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swalih2233/hr.employee/internal/domain/audit"
	"github.com/swalih2233/hr.employee/internal/domain/people"
	"github.com/swalih2233/hr.employee/internal/transport/http/api"
	"github.com/swalih2233/hr.employee/internal/transport/http/middleware"
	"github.com/swalih2233/hr.employee/internal/transport/http/shared"
)

type Handler struct {
	Audit *audit.Service
}

func NewHandler(auditSvc *audit.Service) *Handler {
	return &Handler{Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(people.RoleFounder))
		r.Get("/", h.handleList)
	})
}

type listResponse struct {
	Total  int           `json:"total"`
	Events []audit.Event `json:"events"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entityType"),
		ActorID:    q.Get("actorId"),
	}
	includeDetails := q.Get("details") == "true"
	page := shared.ParsePagination(r, 50, 200)

	total, err := h.Audit.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", rid)
		return
	}
	events, err := h.Audit.List(r.Context(), filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", rid)
		return
	}
	api.Success(w, listResponse{Total: total, Events: events}, rid)
}
