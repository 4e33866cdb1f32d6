package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swalih2233/hr.employee/internal/domain/auth"
	"github.com/swalih2233/hr.employee/internal/domain/people"
	"github.com/swalih2233/hr.employee/internal/transport/http/api"
	"github.com/swalih2233/hr.employee/internal/transport/http/middleware"
)

type Handler struct {
	Auth   *auth.Service
	People *people.Store
}

func NewHandler(authSvc *auth.Service, peopleStore *people.Store) *Handler {
	return &Handler{Auth: authSvc, People: peopleStore}
}

// RegisterRoutes mounts the auth endpoints. loginLimiter throttles the
// login route harder than the rest of the API; pass nil to disable.
func (h *Handler) RegisterRoutes(r chi.Router, loginLimiter func(http.Handler) http.Handler) {
	if loginLimiter != nil {
		r.With(loginLimiter).Post("/auth/login", h.handleLogin)
	} else {
		r.Post("/auth/login", h.handleLogin)
	}
	r.With(middleware.RequireAuth).Get("/auth/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string        `json:"token"`
	Person people.Person `json:"person"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", rid)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email and password are required", rid)
		return
	}

	result, err := h.Auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", rid)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to log in", rid)
		return
	}

	api.Success(w, loginResponse{Token: result.Token, Person: result.Person}, rid)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", rid)
		return
	}

	person, err := h.People.GetByID(r.Context(), user.PersonID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", rid)
		return
	}
	api.Success(w, person, rid)
}
