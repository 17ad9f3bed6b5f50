package notificationshandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paycore/internal/domain/auth"
	"paycore/internal/domain/notifications"
	"paycore/internal/platform/jobs"
	"paycore/internal/transport/http/api"
	"paycore/internal/transport/http/handlers/base"
	"paycore/internal/transport/http/middleware"
	"paycore/internal/transport/http/shared"
)

const dispatchEndpoint = "notifications.payslips"

type Handler struct {
	base.Handler
}

func NewHandler(b base.Handler) *Handler {
	return &Handler{Handler: b}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermNotifySend)).Post("/payslips", h.handleDispatch)
		r.With(middleware.RequirePermission(auth.PermPayrollRead)).Get("/deliveries/{recordID}", h.handleDeliveries)
	})
}

type dispatchPayload struct {
	RecordIDs   []string `json:"recordIds" validate:"max=5000,dive,required"`
	PeriodStart string   `json:"periodStart"`
	PeriodEnd   string   `json:"periodEnd"`
}

func (h *Handler) handleDispatch(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	_, hash, done := base.Idempotent(w, r, b, user, dispatchEndpoint)
	if done {
		return
	}
	var payload dispatchPayload
	if !shared.DecodeAndValidate(w, r, &payload, base.RequestID(r)) {
		return
	}

	target := notifications.Target{RecordIDs: payload.RecordIDs}
	if len(payload.RecordIDs) == 0 {
		v := shared.NewValidator()
		start, _ := v.Date("periodStart", payload.PeriodStart)
		end, _ := v.Date("periodEnd", payload.PeriodEnd)
		v.DateOrder("periodStart", start, "periodEnd", end)
		if v.Reject(w, base.RequestID(r)) {
			return
		}
		target.PeriodStart = &start
		target.PeriodEnd = &end
	}

	var summary notifications.Summary
	_, err := b.Jobs.RunNow(r.Context(), jobs.JobPayslipNotify, func(ctx context.Context) (any, error) {
		var err error
		summary, err = b.Notifications.Dispatch(ctx, target)
		if err != nil {
			return nil, err
		}
		return map[string]int{"total": summary.Total, "success": summary.Success, "failed": summary.Failed}, nil
	})
	if err != nil {
		reqID := base.RequestID(r)
		switch {
		case errors.Is(err, notifications.ErrNoTarget):
			api.Fail(w, http.StatusBadRequest, "invalid_target", err.Error(), reqID)
		case errors.Is(err, notifications.ErrNoRecords):
			api.Fail(w, http.StatusNotFound, "no_records", err.Error(), reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "dispatch_failed", "failed to dispatch payslips", reqID)
		}
		return
	}
	h.Metrics.PayslipsDispatched(summary.Success, summary.Failed)

	base.Audit(r, b, user, "notifications.payslips", "payslip_batch", base.RequestID(r), nil, map[string]int{
		"total":   summary.Total,
		"success": summary.Success,
		"failed":  summary.Failed,
	})
	base.Remember(r, b, user, dispatchEndpoint, hash, summary)
	api.Success(w, summary, base.RequestID(r))
}

func (h *Handler) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	list, err := b.Notifications.Deliveries(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "deliveries_failed", "failed to list deliveries", base.RequestID(r))
		return
	}
	api.Success(w, list, base.RequestID(r))
}
