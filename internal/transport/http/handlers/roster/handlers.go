package rosterhandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paycore/internal/domain/auth"
	"paycore/internal/domain/rostersync"
	"paycore/internal/platform/jobs"
	"paycore/internal/transport/http/api"
	"paycore/internal/transport/http/handlers/base"
	"paycore/internal/transport/http/middleware"
)

type Handler struct {
	base.Handler
}

func NewHandler(b base.Handler) *Handler {
	return &Handler{Handler: b}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermRosterSync)).Post("/roster/sync", h.handleSync)
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	if b.Roster == nil {
		api.Fail(w, http.StatusServiceUnavailable, "roster_not_configured", rostersync.ErrNotConfigured.Error(), base.RequestID(r))
		return
	}

	var result rostersync.Result
	_, err := b.Jobs.RunNow(r.Context(), jobs.JobRosterSync, func(ctx context.Context) (any, error) {
		var err error
		result, err = b.Roster.Sync(ctx)
		if err != nil {
			return nil, err
		}
		return result.Summary, nil
	})
	if err != nil {
		reqID := base.RequestID(r)
		switch {
		case errors.Is(err, rostersync.ErrNotConfigured):
			api.Fail(w, http.StatusServiceUnavailable, "roster_not_configured", err.Error(), reqID)
		case errors.Is(err, rostersync.ErrUpstream):
			api.Fail(w, http.StatusBadGateway, "roster_upstream", err.Error(), reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "roster_sync_failed", "roster sync failed", reqID)
		}
		return
	}
	base.Audit(r, b, user, "roster.sync", "employees", b.Name, nil, result.Summary)
	api.Success(w, result, base.RequestID(r))
}
