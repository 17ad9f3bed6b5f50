package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"paycore/internal/domain/auth"
	"paycore/internal/platform/metrics"
)

type staticOrganizations map[string]bool

func (s staticOrganizations) Has(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "primary"
	}
	return name, s[name]
}

func TestOrganizationSelectsBackend(t *testing.T) {
	var got string
	handler := Organization(staticOrganizations{"primary": true, "secondary": true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetOrganization(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(OrganizationHeader, "Secondary")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got != "secondary" {
		t.Fatalf("expected secondary, got %q", got)
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != "primary" {
		t.Fatalf("expected default organization, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(OrganizationHeader, "elsewhere")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown organization, got %d", rec.Code)
	}
}

func TestDeviceKey(t *testing.T) {
	hash, err := auth.HashKey("clock-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler := DeviceKey(hash)(noContent())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(DeviceKeyHeader, "clock-secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected valid key to pass, got %d", rec.Code)
	}

	req.Header.Set(DeviceKeyHeader, "guess")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	DeviceKey("")(noContent()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected unconfigured key to refuse, got %d", rec.Code)
	}
}

func TestBodyLimitOverrides(t *testing.T) {
	read := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	handler := BodyLimit(4, map[string]int64{"/attendance/": 64})(read)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/deductions", bytes.NewBufferString("0123456789")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected body limit, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/attendance/logs", bytes.NewBufferString("0123456789")))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected override to allow batch, got %d", rec.Code)
	}
}

func TestLoggerRecordsMetricsAndRecovererAnswers500(t *testing.T) {
	collector := metrics.New()
	handler := Logger(collector)(Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if collector.Snapshot()["errorsTotal"] != uint64(1) {
		t.Fatalf("expected error to be counted, got %v", collector.Snapshot())
	}
}
