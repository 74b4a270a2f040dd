package tool

import (
	"context"
	"fmt"
	"testing"
)

type stubTool struct {
	name     string
	kind     Kind
	required []string
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub " + s.name }
func (s *stubTool) Kind() Kind          { return s.kind }
func (s *stubTool) Required() []string  { return s.required }

func (s *stubTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (s *stubTool) Execute(ctx context.Context, args map[string]interface{}) (*Result, error) {
	return &Result{Output: "ok", Success: true}, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewInMemoryRegistry()

	if err := r.Register(&stubTool{name: "create_product", kind: KindCreate}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, ok := r.Get("create_product")
	if !ok {
		t.Fatal("Get returned not found for registered tool")
	}
	if got.Name() != "create_product" {
		t.Errorf("Name = %q, want create_product", got.Name())
	}
	if !r.Has("create_product") {
		t.Error("Has = false for registered tool")
	}
	if r.Has("delete_product") {
		t.Error("Has = true for unregistered tool")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewInMemoryRegistry()

	if err := r.Register(&stubTool{name: "login"}); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := r.Register(&stubTool{name: "login"}); err == nil {
		t.Fatal("duplicate Register succeeded, want error")
	}
}

func TestRegistryListKeepsRegistrationOrder(t *testing.T) {
	r := NewInMemoryRegistry()

	names := []string{"zeta", "alpha", "mid", "beta"}
	for _, n := range names {
		if err := r.Register(&stubTool{name: n}); err != nil {
			t.Fatalf("Register(%s) failed: %v", n, err)
		}
	}

	defs := r.List()
	if len(defs) != len(names) {
		t.Fatalf("List returned %d definitions, want %d", len(defs), len(names))
	}
	for i, n := range names {
		if defs[i].Name != n {
			t.Errorf("List[%d].Name = %q, want %q", i, defs[i].Name, n)
		}
	}
}

func TestRegistryListIsStableAcrossCalls(t *testing.T) {
	r := NewInMemoryRegistry()
	for i := 0; i < 20; i++ {
		if err := r.Register(&stubTool{name: fmt.Sprintf("tool_%02d", i)}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	first := r.List()
	for call := 0; call < 5; call++ {
		again := r.List()
		for i := range first {
			if again[i].Name != first[i].Name {
				t.Fatalf("List order changed at index %d: %q vs %q", i, again[i].Name, first[i].Name)
			}
		}
	}
}

func TestMutatorKinds(t *testing.T) {
	tests := []struct {
		kind    Kind
		mutator bool
	}{
		{KindCreate, true},
		{KindUpdate, true},
		{KindRead, false},
		{KindDelete, false},
	}

	for _, tt := range tests {
		if got := MutatorKinds[tt.kind]; got != tt.mutator {
			t.Errorf("MutatorKinds[%s] = %v, want %v", tt.kind, got, tt.mutator)
		}
	}
}
