package base

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"paycore/internal/app/backend"
	"paycore/internal/domain/audit"
	"paycore/internal/domain/auth"
	"paycore/internal/platform/metrics"
	"paycore/internal/transport/http/api"
	"paycore/internal/transport/http/middleware"
	"paycore/internal/transport/http/shared"
)

// Handler carries what every area handler needs: the organization registry
// and the metrics collector.
type Handler struct {
	Backends *backend.Registry
	Metrics  *metrics.Collector
}

func RequestID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}

// Begin resolves the caller and the organization backend. It writes the
// failure response itself.
func (h *Handler) Begin(w http.ResponseWriter, r *http.Request) (*backend.Backend, auth.UserContext, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", RequestID(r))
		return nil, auth.UserContext{}, false
	}
	b, err := h.Backends.For(r.Context())
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "unknown_organization", "unknown organization", RequestID(r))
		return nil, auth.UserContext{}, false
	}
	return b, user, true
}

// Audit records a mutation. Failures are logged and never fail the request.
func Audit(r *http.Request, b *backend.Backend, user auth.UserContext, action, entityType, entityID string, before, after any) {
	err := b.Audit.Record(r.Context(), audit.Entry{
		ActorID:    user.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  RequestID(r),
		IP:         shared.ClientIP(r),
		Before:     before,
		After:      after,
	})
	if err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

// Idempotent replays a stored response when the caller repeats an
// Idempotency-Key with the same body. It returns the raw body for hashing and
// whether the request was fully answered.
func Idempotent(w http.ResponseWriter, r *http.Request, b *backend.Backend, user auth.UserContext, endpoint string) ([]byte, string, bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.FailTooLarge(w, RequestID(r))
			return nil, "", true
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", RequestID(r))
		return nil, "", true
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	key := r.Header.Get(middleware.IdempotencyHeader)
	hash := middleware.RequestHash(raw)
	stored, found, err := b.Idempotency.Check(r.Context(), user.UserID, endpoint, key, hash)
	if errors.Is(err, middleware.ErrIdempotencyConflict) {
		api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", RequestID(r))
		return nil, "", true
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "idempotency_failed", "failed to check idempotency key", RequestID(r))
		return nil, "", true
	}
	if found {
		api.Replay(w, http.StatusOK, stored)
		return nil, "", true
	}
	return raw, hash, false
}

// Remember stores the success envelope for a keyed request.
func Remember(r *http.Request, b *backend.Backend, user auth.UserContext, endpoint, hash string, data any) {
	key := r.Header.Get(middleware.IdempotencyHeader)
	if key == "" {
		return
	}
	payload, err := json.Marshal(api.Envelope{Success: true, Data: data, RequestID: RequestID(r)})
	if err != nil {
		return
	}
	if err := b.Idempotency.Save(r.Context(), user.UserID, endpoint, key, hash, payload); err != nil {
		slog.Warn("idempotency save failed", "endpoint", endpoint, "err", err)
	}
}

// Date reads an optional YYYY-MM-DD query value.
func Date(v *shared.Validator, r *http.Request, field string) *time.Time {
	raw := r.URL.Query().Get(field)
	if raw == "" {
		return nil
	}
	parsed, ok := v.Date(field, raw)
	if !ok {
		return nil
	}
	return &parsed
}

// Period reads a required period_start/period_end pair from the query.
func Period(v *shared.Validator, r *http.Request) (time.Time, time.Time) {
	start, _ := v.Date("period_start", r.URL.Query().Get("period_start"))
	end, _ := v.Date("period_end", r.URL.Query().Get("period_end"))
	v.DateOrder("period_start", start, "period_end", end)
	return start, end
}
