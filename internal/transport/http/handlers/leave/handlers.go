package leavehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/swalih2233/hr.employee/internal/domain/audit"
	"github.com/swalih2233/hr.employee/internal/domain/calendar"
	"github.com/swalih2233/hr.employee/internal/domain/leave"
	"github.com/swalih2233/hr.employee/internal/domain/ledger"
	"github.com/swalih2233/hr.employee/internal/domain/people"
	"github.com/swalih2233/hr.employee/internal/platform/metrics"
	"github.com/swalih2233/hr.employee/internal/transport/http/api"
	"github.com/swalih2233/hr.employee/internal/transport/http/middleware"
	"github.com/swalih2233/hr.employee/internal/transport/http/shared"
)

type Handler struct {
	Service  *leave.Service
	People   *people.Store
	Holidays *calendar.Store
	Ledgers  *ledger.Store
	Audit    *audit.Service
	Metrics  *metrics.Collector
}

func NewHandler(service *leave.Service, peopleStore *people.Store, holidays *calendar.Store, ledgers *ledger.Store, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, People: peopleStore, Holidays: holidays, Ledgers: ledgers, Audit: auditSvc, Metrics: collector}
}

// RegisterRoutes mounts the leave surface on the /leave subrouter the
// server provides, alongside the policy and reports handlers.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/requests", h.handleListRequests)
		r.Post("/requests", h.handleCreateRequest)
		r.Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequireRole(people.RoleManager, people.RoleFounder)).Post("/requests/{requestID}/approve", h.handleApproveRequest)
		r.With(middleware.RequireRole(people.RoleManager, people.RoleFounder)).Post("/requests/{requestID}/reject", h.handleRejectRequest)
		r.Post("/requests/{requestID}/cancel", h.handleCancelRequest)

		r.Get("/holidays", h.handleListHolidays)
		r.With(middleware.RequireRole(people.RoleFounder)).Post("/holidays", h.handleCreateHoliday)
		r.With(middleware.RequireRole(people.RoleFounder)).Delete("/holidays/{holidayID}", h.handleDeleteHoliday)

		r.Get("/balance", h.handleOwnBalance)
		r.With(middleware.RequireRole(people.RoleManager, people.RoleFounder)).Get("/balances", h.handleListBalances)
		r.Get("/balances/{personID}", h.handleBalance)
		r.With(middleware.RequireRole(people.RoleFounder)).Post("/balances/{personID}/recalculate", h.handleRecalculate)
	})
}

// requester resolves the authenticated caller to a person row; every
// leave operation needs the role and manager chain, not just the IDs in
// the token.
func (h *Handler) requester(w http.ResponseWriter, r *http.Request) (people.Person, bool) {
	rid := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", rid)
		return people.Person{}, false
	}
	person, err := h.People.GetByID(r.Context(), user.PersonID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", rid)
		return people.Person{}, false
	}
	return person, true
}

func failLeaveError(w http.ResponseWriter, err error, fallbackCode, fallbackMessage, rid string) {
	var ve *leave.ValidationError
	switch {
	case errors.As(err, &ve):
		issues := []shared.ValidationIssue{{Field: ve.Field, Reason: ve.Message}}
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "request validation failed", issues, rid)
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "request_not_found", "leave request not found", rid)
	case errors.Is(err, leave.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to act on this request", rid)
	case errors.Is(err, leave.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "request state does not allow this action", rid)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMessage, rid)
	}
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	viewer, ok := h.requester(w, r)
	if !ok {
		return
	}

	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" {
		switch status {
		case leave.StatusPending, leave.StatusApproved, leave.StatusRejected, leave.StatusCancelled:
		default:
			api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown status filter", rid)
			return
		}
	}

	requests, err := h.Service.ListVisible(r.Context(), viewer, status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "requests_list_failed", "failed to list leave requests", rid)
		return
	}
	api.Success(w, requests, rid)
}

type createRequestPayload struct {
	LeaveType      string  `json:"leaveType"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	Subject        string  `json:"subject"`
	Description    string  `json:"description"`
	AttachmentName *string `json:"attachmentName"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}

	var payload createRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", rid)
		return
	}

	v := shared.NewValidator()
	v.Required("subject", payload.Subject, "is required")
	v.Enum("leaveType", payload.LeaveType, []string{leave.TypeAnnual, leave.TypeMedical}, "must be annual or medical")
	start, startOK := v.Date("startDate", payload.StartDate)
	end, endOK := v.Date("endDate", payload.EndDate)
	if startOK && endOK {
		v.DateOrder("startDate", start, "endDate", end)
	}
	if v.Reject(w, rid) {
		return
	}

	req, err := h.Service.Create(r.Context(), requester, leave.CreateRequestInput{
		LeaveType:      strings.ToLower(payload.LeaveType),
		StartDate:      start,
		EndDate:        end,
		Subject:        payload.Subject,
		Description:    payload.Description,
		AttachmentName: payload.AttachmentName,
	})
	if err != nil {
		failLeaveError(w, err, "request_create_failed", "failed to create leave request", rid)
		return
	}

	if err := h.Audit.Record(r.Context(), &requester.ID, "leave.request.create", "leave_request", req.ID, rid, shared.ClientIP(r), nil, req); err != nil {
		slog.Warn("audit leave.request.create failed", "err", err)
	}
	api.Created(w, req, rid)
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	viewer, ok := h.requester(w, r)
	if !ok {
		return
	}

	req, err := h.Service.Get(r.Context(), viewer, chi.URLParam(r, "requestID"))
	if err != nil {
		failLeaveError(w, err, "request_get_failed", "failed to load leave request", rid)
		return
	}
	api.Success(w, req, rid)
}

func (h *Handler) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "approve")
}

func (h *Handler) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "reject")
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, verb string) {
	rid := middleware.GetRequestID(r.Context())
	actor, ok := h.requester(w, r)
	if !ok {
		return
	}
	requestID := chi.URLParam(r, "requestID")

	var (
		req leave.LeaveRequest
		err error
	)
	if verb == "approve" {
		req, err = h.Service.Approve(r.Context(), actor, requestID)
	} else {
		req, err = h.Service.Reject(r.Context(), actor, requestID)
	}
	if err != nil {
		failLeaveError(w, err, "request_decision_failed", "failed to "+verb+" leave request", rid)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordDecision(verb == "approve")
	}
	if err := h.Audit.Record(r.Context(), &actor.ID, "leave.request."+verb, "leave_request", req.ID, rid, shared.ClientIP(r), nil, req); err != nil {
		slog.Warn("audit leave decision failed", "verb", verb, "err", err)
	}
	api.Success(w, req, rid)
}

func (h *Handler) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	actor, ok := h.requester(w, r)
	if !ok {
		return
	}

	req, err := h.Service.Cancel(r.Context(), actor, chi.URLParam(r, "requestID"))
	if err != nil {
		failLeaveError(w, err, "request_cancel_failed", "failed to cancel leave request", rid)
		return
	}

	if err := h.Audit.Record(r.Context(), &actor.ID, "leave.request.cancel", "leave_request", req.ID, rid, shared.ClientIP(r), nil, req); err != nil {
		slog.Warn("audit leave.request.cancel failed", "err", err)
	}
	api.Success(w, req, rid)
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	holidays, err := h.Holidays.ListHolidays(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holidays_list_failed", "failed to list holidays", rid)
		return
	}
	api.Success(w, holidays, rid)
}

type createHolidayPayload struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createHolidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", rid)
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "is required")
	date, _ := v.Date("date", payload.Date)
	if v.Reject(w, rid) {
		return
	}

	id, err := h.Holidays.CreateHoliday(r.Context(), strings.TrimSpace(payload.Title), date)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_create_failed", "failed to create holiday", rid)
		return
	}

	if err := h.Audit.Record(r.Context(), &user.PersonID, "leave.holiday.create", "holiday", id, rid, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit leave.holiday.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, rid)
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	holidayID := chi.URLParam(r, "holidayID")
	if err := h.Holidays.DeleteHoliday(r.Context(), holidayID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_delete_failed", "failed to delete holiday", rid)
		return
	}

	if err := h.Audit.Record(r.Context(), &user.PersonID, "leave.holiday.delete", "holiday", holidayID, rid, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit leave.holiday.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": holidayID}, rid)
}

// balanceView flattens a ledger with its derived remainders so clients
// never re-implement the arithmetic.
type balanceView struct {
	ledger.Ledger
	AnnualRemaining       int `json:"annualRemaining"`
	MedicalRemaining      int `json:"medicalRemaining"`
	CarryforwardAvailable int `json:"carryforwardAvailable"`
}

func newBalanceView(l ledger.Ledger) balanceView {
	return balanceView{
		Ledger:                l,
		AnnualRemaining:       l.AnnualRemaining(),
		MedicalRemaining:      l.MedicalRemaining(),
		CarryforwardAvailable: l.CarryforwardAvailable(),
	}
}

func (h *Handler) handleOwnBalance(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", rid)
		return
	}
	h.writeBalance(w, r, user.PersonID, rid)
}

// handleListBalances returns every ledger the caller may see: all of
// them for a founder, their direct reports plus their own for a manager.
func (h *Handler) handleListBalances(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if user.Role == people.RoleFounder {
		ledgers, err := h.Ledgers.ListAll(r.Context())
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "balances_failed", "failed to list balances", rid)
			return
		}
		views := make([]balanceView, 0, len(ledgers))
		for _, l := range ledgers {
			views = append(views, newBalanceView(l))
		}
		api.Success(w, views, rid)
		return
	}

	reports, err := h.People.ListReports(r.Context(), user.PersonID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "balances_failed", "failed to list balances", rid)
		return
	}
	views := make([]balanceView, 0, len(reports)+1)
	for _, pid := range append([]string{user.PersonID}, personIDs(reports)...) {
		l, err := h.Ledgers.GetByPerson(r.Context(), pid)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				continue
			}
			api.Fail(w, http.StatusInternalServerError, "balances_failed", "failed to list balances", rid)
			return
		}
		views = append(views, newBalanceView(l))
	}
	api.Success(w, views, rid)
}

func personIDs(list []people.Person) []string {
	ids := make([]string, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}
	return ids
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	viewer, ok := h.requester(w, r)
	if !ok {
		return
	}

	personID := chi.URLParam(r, "personID")
	if personID != viewer.ID && viewer.Role != people.RoleFounder {
		target, err := h.People.GetByID(r.Context(), personID)
		if err != nil {
			if errors.Is(err, people.ErrNotFound) {
				api.Fail(w, http.StatusNotFound, "person_not_found", "person not found", rid)
				return
			}
			api.Fail(w, http.StatusInternalServerError, "balance_failed", "failed to load balance", rid)
			return
		}
		if !people.CanApprove(viewer, target) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this balance", rid)
			return
		}
	}
	h.writeBalance(w, r, personID, rid)
}

func (h *Handler) writeBalance(w http.ResponseWriter, r *http.Request, personID, rid string) {
	l, err := h.Ledgers.GetByPerson(r.Context(), personID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "balance_not_found", "leave balance not found", rid)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "balance_failed", "failed to load balance", rid)
		return
	}
	api.Success(w, newBalanceView(l), rid)
}

// handleRecalculate rebuilds a ledger's taken counters from the approved
// request history. Allocations and carryforward grants are left alone.
func (h *Handler) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	personID := chi.URLParam(r, "personID")
	before, after, err := h.Ledgers.RecalculateForPerson(r.Context(), personID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "balance_not_found", "leave balance not found", rid)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "recalculate_failed", "failed to recalculate balance", rid)
		return
	}

	if err := h.Audit.Record(r.Context(), &user.PersonID, "leave.balance.recalculate", "leave_ledger", after.ID, rid, shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit leave.balance.recalculate failed", "err", err)
	}
	api.Success(w, newBalanceView(after), rid)
}
