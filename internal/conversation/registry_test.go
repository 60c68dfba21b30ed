package conversation

import (
	"strings"
	"testing"
)

func TestRegistryGetOrCreate(t *testing.T) {
	r := NewRegistry()

	a := r.GetOrCreate("sess_a")
	if a.ID() != "sess_a" {
		t.Fatalf("unexpected id: %s", a.ID())
	}
	if again := r.GetOrCreate("sess_a"); again != a {
		t.Fatalf("same id should return the same store")
	}

	fresh := r.GetOrCreate("")
	if !strings.HasPrefix(fresh.ID(), "sess_") || fresh.ID() == "sess_a" {
		t.Fatalf("unexpected generated id: %s", fresh.ID())
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", r.Len())
	}

	if _, ok := r.Get("missing"); ok {
		t.Fatalf("Get should not create stores")
	}
	if got, ok := r.Get(fresh.ID()); !ok || got != fresh {
		t.Fatalf("Get should return the created store")
	}
}
