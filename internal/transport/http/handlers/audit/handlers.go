package audithandler

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"paycore/internal/domain/audit"
	"paycore/internal/domain/auth"
	"paycore/internal/transport/http/api"
	"paycore/internal/transport/http/handlers/base"
	"paycore/internal/transport/http/middleware"
	"paycore/internal/transport/http/shared"
)

const exportLimit = 10000

type Handler struct {
	base.Handler
}

func NewHandler(b base.Handler) *Handler {
	return &Handler{Handler: b}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAuditRead)).Get("/events", h.handleListEvents)
		r.With(middleware.RequirePermission(auth.PermAuditRead)).Get("/events/export", h.handleExportEvents)
	})
}

func filterFrom(r *http.Request) audit.Filter {
	q := r.URL.Query()
	return audit.Filter{Action: q.Get("action"), EntityType: q.Get("entityType"), ActorUser: q.Get("actorUserId")}
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	includeDetails := r.URL.Query().Get("includeDetails") == "true"
	filter := filterFrom(r)
	total, err := b.Audit.Count(r.Context(), filter)
	if err != nil {
		slog.Warn("audit count failed", "err", err)
	}

	events, err := b.Audit.List(r.Context(), filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", base.RequestID(r))
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, events, base.RequestID(r))
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}

	events, err := b.Audit.List(r.Context(), filterFrom(r), false, exportLimit, 0)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to export audit events", base.RequestID(r))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actor_user_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}); err != nil {
		slog.Warn("audit export header failed", "err", err)
	}
	for _, evt := range events {
		if err := writer.Write([]string{evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, evt.RequestID, evt.IP, evt.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			slog.Warn("audit export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("audit export flush failed", "err", err)
	}
}
