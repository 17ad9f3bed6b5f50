package reportshandler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"paycore/internal/domain/auth"
	"paycore/internal/domain/reports"
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
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermReportsRead))
		r.Get("/periods", h.handlePeriods)
		r.Get("/months", h.handleMonths)
		r.Get("/overall", h.handleOverall)
		r.Get("/presets", h.handlePresets)
		r.Get("/table", h.handleTable)
		r.Get("/export", h.handleExport)
	})
}

func (h *Handler) handlePeriods(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	periods, err := b.Reports.Periods(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reports_failed", "failed to group periods", base.RequestID(r))
		return
	}
	api.Success(w, periods, base.RequestID(r))
}

func (h *Handler) handleMonths(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	months, err := b.Reports.Months(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reports_failed", "failed to group months", base.RequestID(r))
		return
	}
	api.Success(w, months, base.RequestID(r))
}

func (h *Handler) handleOverall(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	overall, err := b.Reports.Overall(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reports_failed", "failed to summarize payroll", base.RequestID(r))
		return
	}
	api.Success(w, overall, base.RequestID(r))
}

func (h *Handler) handlePresets(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	api.Success(w, map[string]any{
		"columns": reports.AllColumns,
		"presets": b.Reports.Presets(),
	}, base.RequestID(r))
}

func (h *Handler) handleTable(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	req, ok := exportRequest(w, r)
	if !ok {
		return
	}
	table, err := b.Reports.Table(r.Context(), req)
	if err != nil {
		failReport(w, r, err)
		return
	}
	api.Success(w, map[string]any{
		"columns": table.Columns,
		"rows":    table.Maps(),
	}, base.RequestID(r))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	req, ok := exportRequest(w, r)
	if !ok {
		return
	}
	out, err := b.Reports.Export(r.Context(), req)
	if err != nil {
		failReport(w, r, err)
		return
	}
	base.Audit(r, b, user, "reports.export", "report", out.FileName, nil, map[string]any{
		"format": req.Format,
		"preset": req.Preset,
	})
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+out.FileName+"\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}

func exportRequest(w http.ResponseWriter, r *http.Request) (reports.ExportRequest, bool) {
	q := r.URL.Query()
	v := shared.NewValidator()
	v.Enum("format", q.Get("format"), []string{reports.FormatXLSX, reports.FormatCSV}, "must be xlsx or csv")
	req := reports.ExportRequest{
		Format:      strings.ToLower(strings.TrimSpace(q.Get("format"))),
		Preset:      strings.TrimSpace(q.Get("preset")),
		PeriodStart: base.Date(v, r, "period_start"),
		PeriodEnd:   base.Date(v, r, "period_end"),
	}
	if raw := q.Get("columns"); raw != "" {
		for _, col := range strings.Split(raw, ",") {
			if col = strings.TrimSpace(col); col != "" {
				req.Columns = append(req.Columns, col)
			}
		}
	}
	if req.PeriodStart != nil && req.PeriodEnd != nil {
		v.DateOrder("period_start", *req.PeriodStart, "period_end", *req.PeriodEnd)
	}
	if v.Reject(w, base.RequestID(r)) {
		return reports.ExportRequest{}, false
	}
	return req, true
}

func failReport(w http.ResponseWriter, r *http.Request, err error) {
	reqID := base.RequestID(r)
	switch {
	case errors.Is(err, reports.ErrUnknownPreset), errors.Is(err, reports.ErrUnknownFormat):
		api.Fail(w, http.StatusBadRequest, "invalid_report", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "reports_failed", "report generation failed", reqID)
	}
}
