package jobs

import "testing"

func TestDecodeDetails(t *testing.T) {
	if got := decodeDetails(nil); len(got) != 0 {
		t.Fatalf("expected empty details, got %v", got)
	}
	got := decodeDetails([]byte(`{"total":5}`))
	if got["total"] != float64(5) {
		t.Fatalf("expected total 5, got %v", got["total"])
	}
	bad := decodeDetails([]byte("not json"))
	if bad["raw"] != "not json" {
		t.Fatalf("expected raw fallback, got %v", bad)
	}
}
