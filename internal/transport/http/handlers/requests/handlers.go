package requesthandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paycore/internal/domain/auth"
	"paycore/internal/domain/requests"
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
	r.Route("/requests", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermRequestsSubmit)).Post("/", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermRequestsSubmit)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermRequestsReview)).Get("/counts", h.handleCounts)
		r.With(middleware.RequirePermission(auth.PermRequestsSubmit)).Get("/{requestID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermRequestsReview)).Post("/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermRequestsReview)).Post("/{requestID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermOwnRequestsWrite)).Post("/{requestID}/cancel", h.handleCancel)
		r.With(middleware.RequirePermission(auth.PermOwnRequestsWrite)).Post("/{requestID}/follow-up", h.handleFollowUp)
	})
}

type submitPayload struct {
	EmployeeID string `json:"employeeId"`
	Type       string `json:"requestType" validate:"required"`
	Date       string `json:"date" validate:"required"`
	TimeStart  string `json:"timeStart" validate:"required"`
	TimeEnd    string `json:"timeEnd" validate:"required"`
	Reason     string `json:"reason" validate:"required,max=2000"`
}

type remarksPayload struct {
	Remarks string `json:"remarks" validate:"max=2000"`
}

type followUpPayload struct {
	Note string `json:"note" validate:"required,max=2000"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	var payload submitPayload
	if !shared.DecodeAndValidate(w, r, &payload, base.RequestID(r)) {
		return
	}

	v := shared.NewValidator()
	date, _ := v.Date("date", payload.Date)
	employeeID := user.EmployeeID
	if auth.IsStaff(user.Role) && payload.EmployeeID != "" {
		employeeID = payload.EmployeeID
	}
	v.Required("employeeId", employeeID, "is required")
	if v.Reject(w, base.RequestID(r)) {
		return
	}

	req, err := b.Requests.Submit(r.Context(), requests.SubmitInput{
		EmployeeID: employeeID,
		Type:       payload.Type,
		Date:       date,
		TimeStart:  payload.TimeStart,
		TimeEnd:    payload.TimeEnd,
		Reason:     payload.Reason,
	})
	if err != nil {
		failRequest(w, r, err)
		return
	}
	base.Audit(r, b, user, "requests.submit", "request", req.ID, nil, req)
	api.Created(w, req, base.RequestID(r))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	v := shared.NewValidator()
	q := r.URL.Query()
	v.Enum("status", q.Get("status"), []string{
		requests.StatusPending, requests.StatusApproved, requests.StatusRejected, requests.StatusCancelled,
	}, "must be Pending, Approved, Rejected or Cancelled")
	from := base.Date(v, r, "from")
	to := base.Date(v, r, "to")
	if v.Reject(w, base.RequestID(r)) {
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	filter := requests.Filter{
		Status:     q.Get("status"),
		EmployeeID: q.Get("employee_id"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if from != nil {
		filter.From = *from
	}
	if to != nil {
		filter.To = *to
	}
	if !auth.IsStaff(user.Role) {
		if user.EmployeeID == "" {
			api.Success(w, []requests.Request{}, base.RequestID(r))
			return
		}
		filter.EmployeeID = user.EmployeeID
	}

	list, err := b.Requests.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "requests_failed", "failed to list requests", base.RequestID(r))
		return
	}
	api.Success(w, list, base.RequestID(r))
}

func (h *Handler) handleCounts(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	counts, err := b.Requests.Counts(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "requests_failed", "failed to count requests", base.RequestID(r))
		return
	}
	api.Success(w, counts, base.RequestID(r))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	req, err := b.Requests.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		failRequest(w, r, err)
		return
	}
	if !auth.IsStaff(user.Role) && req.EmployeeID != user.EmployeeID {
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", base.RequestID(r))
		return
	}
	api.Success(w, req, base.RequestID(r))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "requests.approve", (*requests.Service).Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "requests.reject", (*requests.Service).Reject)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, action string, apply func(*requests.Service, context.Context, string, string) (requests.Request, error)) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	var payload remarksPayload
	if r.ContentLength != 0 && !shared.DecodeAndValidate(w, r, &payload, base.RequestID(r)) {
		return
	}
	id := chi.URLParam(r, "requestID")
	before, err := b.Requests.Get(r.Context(), id)
	if err != nil {
		failRequest(w, r, err)
		return
	}
	updated, err := apply(b.Requests, r.Context(), id, payload.Remarks)
	if err != nil {
		failRequest(w, r, err)
		return
	}
	base.Audit(r, b, user, action, "request", id, before, updated)
	api.Success(w, updated, base.RequestID(r))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "requestID")
	updated, err := b.Requests.Cancel(r.Context(), id, user.EmployeeID)
	if err != nil {
		failRequest(w, r, err)
		return
	}
	base.Audit(r, b, user, "requests.cancel", "request", id, nil, updated)
	api.Success(w, updated, base.RequestID(r))
}

func (h *Handler) handleFollowUp(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	var payload followUpPayload
	if !shared.DecodeAndValidate(w, r, &payload, base.RequestID(r)) {
		return
	}
	id := chi.URLParam(r, "requestID")
	updated, err := b.Requests.AddFollowUp(r.Context(), id, user.EmployeeID, payload.Note)
	if err != nil {
		failRequest(w, r, err)
		return
	}
	base.Audit(r, b, user, "requests.follow_up", "request", id, nil, updated)
	api.Success(w, updated, base.RequestID(r))
}

func failRequest(w http.ResponseWriter, r *http.Request, err error) {
	reqID := base.RequestID(r)
	switch {
	case errors.Is(err, requests.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", reqID)
	case errors.Is(err, requests.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	case errors.Is(err, requests.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), reqID)
	case errors.Is(err, requests.ErrMissingField),
		errors.Is(err, requests.ErrInvalidType),
		errors.Is(err, requests.ErrInvalidTime),
		errors.Is(err, requests.ErrInvalidTimeSpan):
		api.Fail(w, http.StatusBadRequest, "invalid_request", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "request_failed", "request operation failed", reqID)
	}
}
