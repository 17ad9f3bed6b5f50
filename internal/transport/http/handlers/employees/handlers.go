package employeehandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paycore/internal/domain/auth"
	"paycore/internal/domain/employees"
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
	r.Get("/me", h.handleMe)
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/{employeeID}", h.handleGet)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	list, err := b.Employees.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", base.RequestID(r))
		return
	}
	api.Success(w, list, base.RequestID(r))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	emp, err := b.Employees.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if errors.Is(err, employees.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", base.RequestID(r))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to load employee", base.RequestID(r))
		return
	}
	api.Success(w, emp, base.RequestID(r))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	out := map[string]any{
		"userId":       user.UserID,
		"role":         user.Role,
		"organization": b.Name,
		"permissions":  auth.RolePermissions[user.Role],
	}
	if user.EmployeeID != "" {
		emp, err := b.Employees.Get(r.Context(), user.EmployeeID)
		if err != nil && !errors.Is(err, employees.ErrNotFound) {
			api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to load employee", base.RequestID(r))
			return
		}
		if err == nil {
			out["employee"] = emp
		}
	}
	api.Success(w, out, base.RequestID(r))
}
