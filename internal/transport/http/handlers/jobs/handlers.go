package jobshandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paycore/internal/domain/auth"
	"paycore/internal/platform/jobs"
	"paycore/internal/transport/http/api"
	"paycore/internal/transport/http/handlers/base"
	"paycore/internal/transport/http/middleware"
	"paycore/internal/transport/http/shared"
)

type Handler struct {
	base.Handler
}

func NewHandler(b base.Handler) *Handler {
	return &Handler{Handler: b}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermJobsRead)).Get("/runs", h.handleListRuns)
		r.With(middleware.RequirePermission(auth.PermJobsRead)).Get("/runs/{runID}", h.handleGetRun)
	})
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	runs, err := b.Jobs.ListRuns(r.Context(), jobs.RunFilter{
		JobType: r.URL.Query().Get("jobType"),
		Status:  r.URL.Query().Get("status"),
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "jobs_list_failed", "failed to list job runs", base.RequestID(r))
		return
	}
	api.Success(w, runs, base.RequestID(r))
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	run, err := b.Jobs.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if errors.Is(err, jobs.ErrRunNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "job run not found", base.RequestID(r))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "jobs_get_failed", "failed to load job run", base.RequestID(r))
		return
	}
	api.Success(w, run, base.RequestID(r))
}
