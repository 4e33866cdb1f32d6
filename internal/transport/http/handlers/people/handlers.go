package peoplehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swalih2233/hr.employee/internal/domain/audit"
	"github.com/swalih2233/hr.employee/internal/domain/people"
	"github.com/swalih2233/hr.employee/internal/transport/http/api"
	"github.com/swalih2233/hr.employee/internal/transport/http/middleware"
	"github.com/swalih2233/hr.employee/internal/transport/http/shared"
)

type Handler struct {
	People *people.Store
	Audit  *audit.Service
}

func NewHandler(peopleStore *people.Store, auditSvc *audit.Service) *Handler {
	return &Handler{People: peopleStore, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/people", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.With(middleware.RequireRole(people.RoleFounder)).Post("/", h.handleCreate)
		r.Get("/{personID}", h.handleGet)
		r.With(middleware.RequireRole(people.RoleManager, people.RoleFounder)).Get("/{personID}/reports", h.handleListReports)
	})
}

// handleList scopes the directory to what the caller may act on: a
// founder sees everyone, a manager their own reports plus themselves,
// an employee only themselves.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", rid)
		return
	}

	switch user.Role {
	case people.RoleFounder:
		list, err := h.People.List(r.Context())
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "people_list_failed", "failed to list people", rid)
			return
		}
		api.Success(w, list, rid)
	case people.RoleManager:
		self, err := h.People.GetByID(r.Context(), user.PersonID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "people_list_failed", "failed to list people", rid)
			return
		}
		reports, err := h.People.ListReports(r.Context(), user.PersonID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "people_list_failed", "failed to list people", rid)
			return
		}
		api.Success(w, append([]people.Person{self}, reports...), rid)
	default:
		self, err := h.People.GetByID(r.Context(), user.PersonID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "people_list_failed", "failed to list people", rid)
			return
		}
		api.Success(w, []people.Person{self}, rid)
	}
}

type createPersonRequest struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	ManagerID   *string `json:"managerId"`
	Department  string  `json:"department"`
	Designation string  `json:"designation"`
	JoinedOn    string  `json:"joinedOn"`

	AnnualAllocation  *int `json:"annualAllocation"`
	MedicalAllocation *int `json:"medicalAllocation"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", rid)
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "is required")
	v.Required("lastName", payload.LastName, "is required")
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	v.Enum("role", payload.Role, []string{people.RoleEmployee, people.RoleManager, people.RoleFounder}, "must be employee, manager or founder")
	if len(payload.Password) > 0 && len(payload.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	if payload.Role == people.RoleEmployee && (payload.ManagerID == nil || strings.TrimSpace(*payload.ManagerID) == "") {
		v.Add("managerId", "is required for employees")
	}
	var joinedOn *time.Time
	if payload.JoinedOn != "" {
		if d, ok := v.Date("joinedOn", payload.JoinedOn); ok {
			joinedOn = &d
		}
	}
	if v.Reject(w, rid) {
		return
	}

	params := people.CreateParams{
		FirstName:   strings.TrimSpace(payload.FirstName),
		LastName:    strings.TrimSpace(payload.LastName),
		Email:       payload.Email,
		Password:    payload.Password,
		Role:        payload.Role,
		ManagerID:   payload.ManagerID,
		Department:  strings.TrimSpace(payload.Department),
		Designation: strings.TrimSpace(payload.Designation),
		JoinedOn:    joinedOn,
	}
	if payload.AnnualAllocation != nil {
		params.AnnualAllocation = *payload.AnnualAllocation
	}
	if payload.MedicalAllocation != nil {
		params.MedicalAllocation = *payload.MedicalAllocation
	}

	person, err := h.People.Create(r.Context(), params)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "person_create_failed", "failed to create person", rid)
		return
	}

	if err := h.Audit.Record(r.Context(), &user.PersonID, "people.create", "person", person.ID, rid, shared.ClientIP(r), nil, person); err != nil {
		slog.Warn("audit people.create failed", "err", err)
	}
	api.Created(w, person, rid)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", rid)
		return
	}

	personID := chi.URLParam(r, "personID")
	person, err := h.People.GetByID(r.Context(), personID)
	if err != nil {
		if errors.Is(err, people.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "person_not_found", "person not found", rid)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "person_get_failed", "failed to load person", rid)
		return
	}

	if !canViewPerson(user, person) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this person", rid)
		return
	}
	api.Success(w, person, rid)
}

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	personID := chi.URLParam(r, "personID")
	if user.Role == people.RoleManager && personID != user.PersonID {
		api.Fail(w, http.StatusForbidden, "forbidden", "managers may only list their own reports", rid)
		return
	}

	reports, err := h.People.ListReports(r.Context(), personID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reports_list_failed", "failed to list reports", rid)
		return
	}
	api.Success(w, reports, rid)
}

func canViewPerson(viewer middleware.UserContext, target people.Person) bool {
	if viewer.Role == people.RoleFounder || viewer.PersonID == target.ID {
		return true
	}
	if viewer.Role == people.RoleManager {
		return target.ManagerID != nil && *target.ManagerID == viewer.PersonID
	}
	return false
}
