package backend

import (
	"context"
	"errors"
	"testing"

	"paycore/internal/platform/db"
)

func TestRegistryResolvesDefaultAndNamed(t *testing.T) {
	reg := NewRegistry("Primary")
	reg.Add(&Backend{Name: "primary"})
	reg.Add(&Backend{Name: "Secondary"})

	b, err := reg.Resolve("")
	if err != nil || b.Name != "primary" {
		t.Fatalf("expected default backend, got %v %v", b, err)
	}
	b, err = reg.Resolve(" SECONDARY ")
	if err != nil || b.Name != "Secondary" {
		t.Fatalf("expected secondary backend, got %v %v", b, err)
	}
	if _, err := reg.Resolve("third"); !errors.Is(err, db.ErrUnknownOrganization) {
		t.Fatalf("expected unknown organization, got %v", err)
	}
	if name, ok := reg.Has("secondary"); !ok || name != "secondary" {
		t.Fatalf("unexpected Has result %q %v", name, ok)
	}
}

func TestRegistryForUsesDefaultWithoutOrganization(t *testing.T) {
	reg := NewRegistry("primary")
	reg.Add(&Backend{Name: "primary"})
	b, err := reg.For(context.Background())
	if err != nil || b.Name != "primary" {
		t.Fatalf("expected primary, got %v %v", b, err)
	}
}
