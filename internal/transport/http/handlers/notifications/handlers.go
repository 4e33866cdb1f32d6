package notificationshandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swalih2233/hr.employee/internal/domain/notifications"
	"github.com/swalih2233/hr.employee/internal/transport/http/api"
	"github.com/swalih2233/hr.employee/internal/transport/http/middleware"
	"github.com/swalih2233/hr.employee/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/unread-count", h.handleUnreadCount)
		r.Post("/{notificationID}/read", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", rid)
		return
	}

	page := shared.ParsePagination(r, 50, 100)
	list, err := h.Service.List(r.Context(), user.PersonID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_list_failed", "failed to list notifications", rid)
		return
	}
	api.Success(w, list, rid)
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", rid)
		return
	}

	count, err := h.Service.CountUnread(r.Context(), user.PersonID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_count_failed", "failed to count notifications", rid)
		return
	}
	api.Success(w, map[string]int{"unread": count}, rid)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", rid)
		return
	}

	notificationID := chi.URLParam(r, "notificationID")
	if err := h.Service.MarkRead(r.Context(), user.PersonID, notificationID); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "notification_not_found", "notification not found", rid)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "notification_read_failed", "failed to mark notification read", rid)
		return
	}
	api.Success(w, map[string]string{"id": notificationID}, rid)
}
