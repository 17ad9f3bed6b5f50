package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFailWithDetailsIncludesPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	FailWithDetails(rec, http.StatusConflict, "period_exists", "period already generated", map[string]int{"existing": 3}, "req-1")

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string         `json:"code"`
			Details map[string]int `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error.Code != "period_exists" || body.Error.Details["existing"] != 3 || body.RequestID != "req-1" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
