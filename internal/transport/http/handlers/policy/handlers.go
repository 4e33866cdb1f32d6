package policyhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swalih2233/hr.employee/internal/domain/audit"
	"github.com/swalih2233/hr.employee/internal/domain/people"
	"github.com/swalih2233/hr.employee/internal/platform/jobs"
	"github.com/swalih2233/hr.employee/internal/transport/http/api"
	"github.com/swalih2233/hr.employee/internal/transport/http/middleware"
	"github.com/swalih2233/hr.employee/internal/transport/http/shared"
)

type Handler struct {
	Runner *jobs.Runner
	Audit  *audit.Service
}

func NewHandler(runner *jobs.Runner, auditSvc *audit.Service) *Handler {
	return &Handler{Runner: runner, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/policy", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(people.RoleFounder))
		r.Post("/run", h.handleRun)
		r.Get("/runs", h.handleListRuns)
	})
}

type runRequest struct {
	Action string `json:"action"`
	DryRun bool   `json:"dryRun"`
}

// actionJobType maps the API action names to the persisted job types.
// The "test" action is handled separately: it dry-runs all three.
func actionJobType(action string) (string, bool) {
	switch action {
	case "grant":
		return jobs.JobYearEndGrant, true
	case "cleanup":
		return jobs.JobCarryforwardCleanup, true
	case "reminder":
		return jobs.JobCarryforwardReminder, true
	}
	return "", false
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload runRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", rid)
		return
	}

	if payload.Action == "test" {
		runs := make([]jobs.JobRun, 0, 3)
		for _, jobType := range []string{jobs.JobYearEndGrant, jobs.JobCarryforwardCleanup, jobs.JobCarryforwardReminder} {
			run, err := h.Runner.Run(r.Context(), jobType, jobs.TriggerManual, true, time.Now())
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "job_run_failed", "policy test run failed", rid)
				return
			}
			runs = append(runs, run)
		}
		h.recordAudit(r, user.PersonID, "policy.test", rid, payload)
		api.Success(w, runs, rid)
		return
	}

	jobType, ok := actionJobType(payload.Action)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_action", "action must be grant, cleanup, reminder or test", rid)
		return
	}

	run, err := h.Runner.Run(r.Context(), jobType, jobs.TriggerManual, payload.DryRun, time.Now())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_run_failed", "policy job failed", rid)
		return
	}

	h.recordAudit(r, user.PersonID, "policy.run", rid, payload)
	api.Success(w, run, rid)
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, rid string, payload runRequest) {
	if err := h.Audit.Record(r.Context(), &actorID, action, "job_run", payload.Action, rid, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit policy run failed", "err", err)
	}
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())

	jobType := ""
	if action := r.URL.Query().Get("action"); action != "" {
		mapped, ok := actionJobType(action)
		if !ok {
			api.Fail(w, http.StatusBadRequest, "invalid_action", "unknown action filter", rid)
			return
		}
		jobType = mapped
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.Runner.ListRuns(r.Context(), jobType, limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to list policy runs", rid)
		return
	}
	api.Success(w, runs, rid)
}
