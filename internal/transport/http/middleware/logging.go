package middleware

import (
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"paycore/internal/platform/metrics"
	"paycore/internal/transport/http/api"
)

type logEntry struct {
	Timestamp    string `json:"ts"`
	Method       string `json:"method"`
	Path         string `json:"path"`
	Status       int    `json:"status"`
	Duration     int64  `json:"durationMs"`
	RequestID    string `json:"requestId"`
	Organization string `json:"organization,omitempty"`
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logger writes one JSON access line per request and feeds the collector.
func Logger(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			elapsed := time.Since(start)
			if collector != nil {
				collector.Record(recorder.status, elapsed)
			}
			entry := logEntry{
				Timestamp:    time.Now().UTC().Format(time.RFC3339),
				Method:       r.Method,
				Path:         r.URL.Path,
				Status:       recorder.status,
				Duration:     elapsed.Milliseconds(),
				RequestID:    GetRequestID(r.Context()),
				Organization: r.Header.Get(OrganizationHeader),
			}

			payload, _ := json.Marshal(entry)
			log.Println(string(payload))
		})
	}
}

func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic recovered", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
				api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", GetRequestID(r.Context()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
