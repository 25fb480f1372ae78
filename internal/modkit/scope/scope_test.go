package scope

import (
	"context"
	"maps"
	"slices"
	"testing"
)

func TestWith_MergesWithoutTouchingParent(t *testing.T) {
	parent := With(context.Background(), map[string]string{"source": "upload", "request_id": "r1"})
	child := With(parent, map[string]string{"source": "json", "caller": "token:ab12cd34"})

	want := map[string]string{"source": "json", "request_id": "r1", "caller": "token:ab12cd34"}
	if got := From(child).Values; !maps.Equal(got, want) {
		t.Fatalf("child = %v want %v", got, want)
	}
	if v, _ := Get(parent, "source"); v != "upload" {
		t.Fatalf("parent scope mutated: source=%q", v)
	}
	if _, ok := Get(parent, "caller"); ok {
		t.Fatal("parent scope gained a child key")
	}
}

func TestFrom_Empty(t *testing.T) {
	s := From(context.Background())
	if s.Values == nil || len(s.Keys()) != 0 {
		t.Fatalf("empty scope = %#v", s)
	}
	if _, ok := Get(context.Background(), "source"); ok {
		t.Fatal("missing key reported present")
	}

	ctx := context.WithValue(context.Background(), key{}, Scope{})
	if v, _ := Get(With(ctx, map[string]string{"x": "1"}), "x"); v != "1" {
		t.Fatalf("nil Values not initialized, x=%q", v)
	}
}

func TestScope_KeysSorted(t *testing.T) {
	ctx := With(context.Background(), map[string]string{"source": "json", "caller": "c", "request_id": "r"})
	if got := From(ctx).Keys(); !slices.Equal(got, []string{"caller", "request_id", "source"}) {
		t.Fatalf("keys = %v", got)
	}
}
