package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDMiddleware(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Fatal("expected request id in context")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "caller-id" {
		t.Fatalf("expected caller id to be echoed, got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestRequestHashDeterministic(t *testing.T) {
	hash1 := RequestHash([]byte("payload"))
	hash2 := RequestHash([]byte("payload"))
	hash3 := RequestHash([]byte("other"))

	if hash1 != hash2 {
		t.Fatal("expected deterministic hash")
	}
	if hash1 == hash3 {
		t.Fatal("expected different hash for different payload")
	}
}
