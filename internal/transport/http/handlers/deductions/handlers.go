package deductionhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paycore/internal/domain/auth"
	"paycore/internal/domain/deductions"
	"paycore/internal/transport/http/api"
	"paycore/internal/transport/http/handlers/base"
	"paycore/internal/transport/http/middleware"
	"paycore/internal/transport/http/shared"
)

const bulkEndpoint = "deductions.bulk"

type Handler struct {
	base.Handler
}

func NewHandler(b base.Handler) *Handler {
	return &Handler{Handler: b}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/deductions", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermDeductionsRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermDeductionsRead)).Get("/summary", h.handleSummary)
		r.With(middleware.RequirePermission(auth.PermDeductionsWrite)).Post("/", h.handleRecord)
		r.With(middleware.RequirePermission(auth.PermDeductionsWrite)).Post("/bulk", h.handleBulk)
		r.With(middleware.RequirePermission(auth.PermDeductionsWrite)).Patch("/{deductionID}", h.handleUpdateNotes)
		r.With(middleware.RequirePermission(auth.PermDeductionsWrite)).Delete("/{deductionID}", h.handleDelete)
	})
}

type notesPayload struct {
	Notes string `json:"notes" validate:"max=2000"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	entries, err := b.Deductions.List(r.Context(), r.URL.Query().Get("employee_id"))
	if err != nil {
		failDeduction(w, r, err)
		return
	}
	api.Success(w, entries, base.RequestID(r))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	summary, err := b.Deductions.Summary(r.Context())
	if err != nil {
		failDeduction(w, r, err)
		return
	}
	api.Success(w, summary, base.RequestID(r))
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	var in deductions.EntryInput
	if !shared.DecodeAndValidate(w, r, &in, base.RequestID(r)) {
		return
	}
	result, err := b.Deductions.Record(r.Context(), in)
	if err != nil {
		failDeduction(w, r, err)
		return
	}
	h.Metrics.DeductionsRecorded(1)
	base.Audit(r, b, user, "deductions.record", "deduction", result.Entry.ID, nil, result)
	api.Created(w, result, base.RequestID(r))
}

// handleBulk records up to four typed entries for one employee. Each item
// reports its own outcome; the request only fails when nothing was sent.
func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	_, hash, done := base.Idempotent(w, r, b, user, bulkEndpoint)
	if done {
		return
	}
	var in deductions.BulkInput
	if !shared.DecodeAndValidate(w, r, &in, base.RequestID(r)) {
		return
	}
	result, err := b.Deductions.BulkRecord(r.Context(), in)
	if err != nil {
		failDeduction(w, r, err)
		return
	}
	h.Metrics.DeductionsRecorded(result.Success)
	base.Audit(r, b, user, "deductions.bulk", "employee", in.EmployeeID, nil, result)
	base.Remember(r, b, user, bulkEndpoint, hash, result)
	api.Success(w, result, base.RequestID(r))
}

func (h *Handler) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	var payload notesPayload
	if !shared.DecodeAndValidate(w, r, &payload, base.RequestID(r)) {
		return
	}
	id := chi.URLParam(r, "deductionID")
	entry, err := b.Deductions.UpdateNotes(r.Context(), id, payload.Notes)
	if err != nil {
		failDeduction(w, r, err)
		return
	}
	base.Audit(r, b, user, "deductions.notes", "deduction", id, nil, entry)
	api.Success(w, entry, base.RequestID(r))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "deductionID")
	if err := b.Deductions.Delete(r.Context(), id); err != nil {
		failDeduction(w, r, err)
		return
	}
	base.Audit(r, b, user, "deductions.delete", "deduction", id, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, base.RequestID(r))
}

func failDeduction(w http.ResponseWriter, r *http.Request, err error) {
	reqID := base.RequestID(r)
	switch {
	case errors.Is(err, deductions.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "deduction not found", reqID)
	case deductions.IsValidation(err):
		api.Fail(w, http.StatusBadRequest, "invalid_deduction", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "deduction_failed", "deduction operation failed", reqID)
	}
}
