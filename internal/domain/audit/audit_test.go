package audit

import (
	"strings"
	"testing"
)

func TestBuildBaseQueryNumbersPlaceholders(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{Action: "payroll.generate", ActorUser: "u-1"})
	if !strings.Contains(query, "action = $1") || !strings.Contains(query, "actor_user_id = $2") {
		t.Fatalf("unexpected query %q", query)
	}
	if len(args) != 2 || args[0] != "payroll.generate" || args[1] != "u-1" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestBuildBaseQueryWithoutFilters(t *testing.T) {
	query, args := buildBaseQuery("SELECT id", Filter{})
	if strings.Contains(query, "$") || len(args) != 0 {
		t.Fatalf("expected no placeholders, got %q %v", query, args)
	}
}

func TestMarshalOptionalSkipsNil(t *testing.T) {
	got, err := marshalOptional(nil)
	if err != nil || got != nil {
		t.Fatalf("expected nil payload, got %s %v", got, err)
	}
	got, err = marshalOptional(map[string]int{"count": 2})
	if err != nil || string(got) != `{"count":2}` {
		t.Fatalf("unexpected payload %s %v", got, err)
	}
}
