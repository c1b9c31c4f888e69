package depgraph

import (
	"errors"
	"testing"
)

func TestAddEdgeAndSuccessors(t *testing.T) {
	g := New()
	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatalf("AddEdge(a, b) failed: %v", err)
	}
	if err := g.AddEdge("a", "c"); err != nil {
		t.Fatalf("AddEdge(a, c) failed: %v", err)
	}
	// Duplicate insert is a no-op.
	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatalf("duplicate AddEdge failed: %v", err)
	}

	got := g.Successors("a")
	want := []string{"b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Successors(a) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Successors(a)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAddEdgeRejectsCycle(t *testing.T) {
	g := New()
	mustAdd := func(from, to string) {
		t.Helper()
		if err := g.AddEdge(from, to); err != nil {
			t.Fatalf("AddEdge(%s, %s) failed: %v", from, to, err)
		}
	}
	mustAdd("a", "b")
	mustAdd("b", "c")
	mustAdd("c", "d")

	err := g.AddEdge("d", "a")
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("AddEdge(d, a) = %v, want ErrCycle", err)
	}
	// The rejected edge must not have been inserted.
	if len(g.Successors("d")) != 0 {
		t.Errorf("rejected edge was stored: %v", g.Successors("d"))
	}
}

func TestAddEdgeRejectsSelfEdge(t *testing.T) {
	g := New()
	if err := g.AddEdge("a", "a"); !errors.Is(err, ErrCycle) {
		t.Fatalf("AddEdge(a, a) = %v, want ErrCycle", err)
	}
}

func TestWouldCreateCycle(t *testing.T) {
	g := New()
	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("b", "c")

	tests := []struct {
		from, to string
		want     bool
	}{
		{"c", "a", true},
		{"c", "b", true},
		{"a", "c", false},
		{"x", "y", false},
		{"b", "b", true},
	}
	for _, tt := range tests {
		if got := g.WouldCreateCycle(tt.from, tt.to); got != tt.want {
			t.Errorf("WouldCreateCycle(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRemoveEdgeReopensPath(t *testing.T) {
	g := New()
	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("b", "c")

	if err := g.AddEdge("c", "a"); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected cycle before removal, got %v", err)
	}

	g.RemoveEdge("b", "c")
	if err := g.AddEdge("c", "a"); err != nil {
		t.Fatalf("AddEdge(c, a) after removal failed: %v", err)
	}

	// Removing a nonexistent edge is harmless.
	g.RemoveEdge("nope", "nothing")
}
