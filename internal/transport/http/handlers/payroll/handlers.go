package payrollhandler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"paycore/internal/app/backend"
	"paycore/internal/domain/adjustments"
	"paycore/internal/domain/auth"
	"paycore/internal/domain/payroll"
	"paycore/internal/transport/http/api"
	"paycore/internal/transport/http/handlers/base"
	"paycore/internal/transport/http/middleware"
	"paycore/internal/transport/http/shared"
)

const generateEndpoint = "payroll.generate"

type Handler struct {
	base.Handler
}

func NewHandler(b base.Handler) *Handler {
	return &Handler{Handler: b}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollGenerate)).Post("/generate", h.handleGenerate)
		r.With(middleware.RequirePermission(auth.PermPayrollGenerate)).Post("/adjustments/preview", h.handlePreview)
		r.Get("/records", h.handleListRecords)
		r.Get("/records/{recordID}", h.handleGetRecord)
		r.Get("/records/{recordID}/payslip", h.handlePayslip)
		r.With(middleware.RequirePermission(auth.PermPayrollRead)).Get("/records/{recordID}/overtime", h.handleOvertime)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite)).Patch("/records/{recordID}", h.handleEditRecord)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite)).Post("/records/{recordID}/status", h.handleSetStatus)
		r.With(middleware.RequirePermission(auth.PermPayrollRead)).Get("/periods/view", h.handlePeriodView)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite)).Delete("/periods", h.handleDeletePeriod)
	})
}

type generatePayload struct {
	PeriodStart string                   `json:"periodStart" validate:"required"`
	PeriodEnd   string                   `json:"periodEnd" validate:"required"`
	AutoFill    bool                     `json:"autoFill"`
	RequestIDs  []string                 `json:"requestIds" validate:"max=1000,dive,required,uuid"`
	Adjustments []adjustments.Adjustment `json:"adjustments" validate:"max=5000,dive"`
	Confirm     bool                     `json:"confirm"`
}

type statusPayload struct {
	Status string `json:"status" validate:"required"`
}

// canRead lets staff read any record and employees only their own.
func canRead(user auth.UserContext, employeeID string) bool {
	if auth.Allowed(user.Role, auth.PermPayrollRead) {
		return true
	}
	return auth.Allowed(user.Role, auth.PermOwnPayslipsRead) && user.EmployeeID != "" && user.EmployeeID == employeeID
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	_, hash, done := base.Idempotent(w, r, b, user, generateEndpoint)
	if done {
		return
	}
	var payload generatePayload
	set, issues, start, end, ok := h.buildAdjustments(w, r, b, &payload)
	if !ok {
		return
	}

	result, err := b.Payroll.Generate(r.Context(), payroll.GenerateInput{
		PeriodStart: start,
		PeriodEnd:   end,
		Adjustments: set,
		Confirm:     payload.Confirm,
	})
	if err != nil {
		failPayroll(w, r, err)
		return
	}
	result.Issues = append(issues, result.Issues...)
	h.Metrics.PeriodGenerated(len(result.Records))

	base.Audit(r, b, user, "payroll.generate", "payroll_period", start.Format("2006-01-02")+"_"+end.Format("2006-01-02"), nil, map[string]any{
		"records":  len(result.Records),
		"replaced": result.Replaced,
		"issues":   len(result.Issues),
	})
	base.Remember(r, b, user, generateEndpoint, hash, result)
	api.Created(w, result, base.RequestID(r))
}

// handlePreview returns the adjustment set a generation with the same payload
// would use, so operators can fill in rates before generating.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	var payload generatePayload
	set, issues, _, _, ok := h.buildAdjustments(w, r, b, &payload)
	if !ok {
		return
	}
	if issues == nil {
		issues = []adjustments.Issue{}
	}
	api.Success(w, map[string]any{
		"adjustments": set.List(),
		"issues":      issues,
	}, base.RequestID(r))
}

func (h *Handler) buildAdjustments(w http.ResponseWriter, r *http.Request, b *backend.Backend, payload *generatePayload) (*adjustments.Set, []adjustments.Issue, time.Time, time.Time, bool) {
	if !shared.DecodeAndValidate(w, r, payload, base.RequestID(r)) {
		return nil, nil, time.Time{}, time.Time{}, false
	}
	v := shared.NewValidator()
	start, _ := v.Date("periodStart", payload.PeriodStart)
	end, _ := v.Date("periodEnd", payload.PeriodEnd)
	v.DateOrder("periodStart", start, "periodEnd", end)
	if v.Reject(w, base.RequestID(r)) {
		return nil, nil, time.Time{}, time.Time{}, false
	}

	set, issues, err := b.Adjustments.Build(r.Context(), start, end, payload.AutoFill, payload.RequestIDs, payload.Adjustments)
	if err != nil {
		if errors.Is(err, adjustments.ErrMissingEmployee) || errors.Is(err, adjustments.ErrNegativeAmount) || errors.Is(err, adjustments.ErrInvalidPeriod) {
			api.Fail(w, http.StatusBadRequest, "invalid_adjustment", err.Error(), base.RequestID(r))
			return nil, nil, time.Time{}, time.Time{}, false
		}
		api.Fail(w, http.StatusInternalServerError, "adjustments_failed", "failed to collect adjustments", base.RequestID(r))
		return nil, nil, time.Time{}, time.Time{}, false
	}
	return set, issues, start, end, true
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	v := shared.NewValidator()
	filter := payroll.RecordFilter{
		PeriodStart: base.Date(v, r, "period_start"),
		PeriodEnd:   base.Date(v, r, "period_end"),
		EmployeeID:  q.Get("employee_id"),
		Status:      q.Get("status"),
	}
	if filter.Status != "" && !payroll.ValidStatus(filter.Status) {
		v.Add("status", "must be Pending Payment, Paid or Cancelled")
	}
	if v.Reject(w, base.RequestID(r)) {
		return
	}
	if !auth.Allowed(user.Role, auth.PermPayrollRead) {
		if !canRead(user, user.EmployeeID) {
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", base.RequestID(r))
			return
		}
		filter.EmployeeID = user.EmployeeID
	}

	records, err := b.Payroll.List(r.Context(), filter)
	if err != nil {
		failPayroll(w, r, err)
		return
	}
	api.Success(w, records, base.RequestID(r))
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	rec, err := b.Payroll.Get(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		failPayroll(w, r, err)
		return
	}
	if !canRead(user, rec.EmployeeID) {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", base.RequestID(r))
		return
	}
	api.Success(w, rec, base.RequestID(r))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "recordID")
	rec, err := b.Payroll.Get(r.Context(), id)
	if err != nil {
		failPayroll(w, r, err)
		return
	}
	if !canRead(user, rec.EmployeeID) {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", base.RequestID(r))
		return
	}
	pdf, name, err := b.Payroll.Payslip(r.Context(), id)
	if err != nil {
		failPayroll(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) handleOvertime(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	lines, err := b.Payroll.Overtime(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		failPayroll(w, r, err)
		return
	}
	api.Success(w, lines, base.RequestID(r))
}

func (h *Handler) handleEditRecord(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	var edit payroll.RecordEdit
	if !shared.DecodeAndValidate(w, r, &edit, base.RequestID(r)) {
		return
	}
	id := chi.URLParam(r, "recordID")
	before, err := b.Payroll.Get(r.Context(), id)
	if err != nil {
		failPayroll(w, r, err)
		return
	}
	updated, err := b.Payroll.Edit(r.Context(), id, edit)
	if err != nil {
		failPayroll(w, r, err)
		return
	}
	base.Audit(r, b, user, "payroll.edit", "payroll_record", id, before, updated)
	api.Success(w, updated, base.RequestID(r))
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	var payload statusPayload
	if !shared.DecodeAndValidate(w, r, &payload, base.RequestID(r)) {
		return
	}
	id := chi.URLParam(r, "recordID")
	updated, err := b.Payroll.SetStatus(r.Context(), id, payload.Status)
	if err != nil {
		failPayroll(w, r, err)
		return
	}
	base.Audit(r, b, user, "payroll.status", "payroll_record", id, nil, map[string]string{"status": updated.Status})
	api.Success(w, updated, base.RequestID(r))
}

func (h *Handler) handlePeriodView(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	v := shared.NewValidator()
	start, end := base.Period(v, r)
	if v.Reject(w, base.RequestID(r)) {
		return
	}
	views, err := b.Payroll.PeriodView(r.Context(), start, end)
	if err != nil {
		failPayroll(w, r, err)
		return
	}
	api.Success(w, views, base.RequestID(r))
}

func (h *Handler) handleDeletePeriod(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	v := shared.NewValidator()
	start, end := base.Period(v, r)
	if v.Reject(w, base.RequestID(r)) {
		return
	}
	deleted, err := b.Payroll.DeletePeriod(r.Context(), start, end)
	if err != nil {
		failPayroll(w, r, err)
		return
	}
	base.Audit(r, b, user, "payroll.delete_period", "payroll_period", start.Format("2006-01-02")+"_"+end.Format("2006-01-02"), map[string]int64{"records": deleted}, nil)
	api.Success(w, map[string]int64{"deleted": deleted}, base.RequestID(r))
}

func failPayroll(w http.ResponseWriter, r *http.Request, err error) {
	reqID := base.RequestID(r)
	var exists *payroll.PeriodExistsError
	switch {
	case errors.As(err, &exists):
		api.FailWithDetails(w, http.StatusConflict, "period_exists", err.Error(), map[string]int{"existing": exists.Existing}, reqID)
	case errors.Is(err, payroll.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", reqID)
	case errors.Is(err, payroll.ErrPeriodGenerationInUse):
		api.Fail(w, http.StatusConflict, "generation_in_progress", err.Error(), reqID)
	case errors.Is(err, payroll.ErrNoEligibleEmployees):
		api.Fail(w, http.StatusUnprocessableEntity, "no_eligible_employees", err.Error(), reqID)
	case errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, payroll.ErrInvalidStatus),
		errors.Is(err, payroll.ErrNegativeAmount),
		errors.Is(err, payroll.ErrInvalidDeductionType):
		api.Fail(w, http.StatusBadRequest, "invalid_payroll", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "payroll_failed", "payroll operation failed", reqID)
	}
}
