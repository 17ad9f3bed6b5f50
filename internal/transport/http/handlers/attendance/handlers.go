package attendancehandler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"paycore/internal/domain/attendance"
	"paycore/internal/domain/auth"
	"paycore/internal/domain/employees"
	"paycore/internal/platform/jobs"
	"paycore/internal/transport/http/api"
	"paycore/internal/transport/http/handlers/base"
	"paycore/internal/transport/http/middleware"
	"paycore/internal/transport/http/shared"
)

const DeviceIDHeader = "X-Device-ID"

type Handler struct {
	base.Handler
	DeviceKeyHash string
}

func NewHandler(b base.Handler, deviceKeyHash string) *Handler {
	return &Handler{Handler: b, DeviceKeyHash: deviceKeyHash}
}

// RegisterRoutes mounts the read endpoints and the ingestion endpoint used by
// time-clock pollers, which authenticates with the device key instead of a
// bearer token.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.DeviceKey(h.DeviceKeyHash)).Post("/logs", h.handleIngest)
		r.Get("/days", h.handleDays)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead)).Get("/logs", h.handleLogs)
	})
}

type ingestPayload struct {
	Logs []attendance.Punch `json:"logs" validate:"required,min=1,max=5000,dive"`
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	b, err := h.Backends.For(r.Context())
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "unknown_organization", "unknown organization", base.RequestID(r))
		return
	}
	var payload ingestPayload
	if !shared.DecodeAndValidate(w, r, &payload, base.RequestID(r)) {
		return
	}

	deviceID := r.Header.Get(DeviceIDHeader)
	var result attendance.IngestResult
	_, err = b.Jobs.RunNow(r.Context(), jobs.JobAttendance, func(ctx context.Context) (any, error) {
		var err error
		result, err = b.Attendance.Ingest(ctx, deviceID, payload.Logs)
		if err != nil {
			return nil, err
		}
		return map[string]any{"device": deviceID, "received": result.Received, "inserted": result.Inserted}, nil
	})
	if err != nil {
		failAttendance(w, r, err)
		return
	}
	api.Created(w, result, base.RequestID(r))
}

// handleDays lets staff read any device user. Employees read the device user
// linked to their own employee record.
func (h *Handler) handleDays(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.Begin(w, r)
	if !ok {
		return
	}
	v := shared.NewValidator()
	from, to := dateRange(v, r)
	if v.Reject(w, base.RequestID(r)) {
		return
	}

	userID := r.URL.Query().Get("user_id")
	switch {
	case auth.Allowed(user.Role, auth.PermAttendanceRead):
	case auth.Allowed(user.Role, auth.PermOwnAttendance) && user.EmployeeID != "":
		emp, err := b.Employees.Get(r.Context(), user.EmployeeID)
		if errors.Is(err, employees.ErrNotFound) || (err == nil && emp.UserID == "") {
			api.Success(w, []attendance.Day{}, base.RequestID(r))
			return
		}
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to load employee", base.RequestID(r))
			return
		}
		userID = emp.UserID
	default:
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", base.RequestID(r))
		return
	}

	days, err := b.Attendance.Days(r.Context(), userID, from, to)
	if err != nil {
		failAttendance(w, r, err)
		return
	}
	api.Success(w, days, base.RequestID(r))
}

func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.Begin(w, r)
	if !ok {
		return
	}
	v := shared.NewValidator()
	from, to := dateRange(v, r)
	if v.Reject(w, base.RequestID(r)) {
		return
	}
	logs, err := b.Attendance.Logs(r.Context(), attendance.LogFilter{
		UserID: r.URL.Query().Get("user_id"),
		From:   from,
		To:     to.AddDate(0, 0, 1),
	})
	if err != nil {
		failAttendance(w, r, err)
		return
	}
	api.Success(w, logs, base.RequestID(r))
}

// dateRange reads from/to, defaulting to the last seven days.
func dateRange(v *shared.Validator, r *http.Request) (time.Time, time.Time) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -6)
	to := today
	if d := base.Date(v, r, "from"); d != nil {
		from = *d
	}
	if d := base.Date(v, r, "to"); d != nil {
		to = *d
	}
	v.DateOrder("from", from, "to", to)
	return from, to
}

func failAttendance(w http.ResponseWriter, r *http.Request, err error) {
	reqID := base.RequestID(r)
	switch {
	case errors.Is(err, attendance.ErrEmptyBatch),
		errors.Is(err, attendance.ErrBatchTooLarge),
		errors.Is(err, attendance.ErrInvalidLog),
		errors.Is(err, attendance.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_attendance", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "attendance operation failed", reqID)
	}
}
