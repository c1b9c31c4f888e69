// Package depgraph is the small dependency-edge utility the planning
// sandbox calls to keep its what-if graphs acyclic. It stores directed
// edges and refuses any edge that would close a cycle. Not part of the
// analysis engine; the engine's task input carries no precedence edges.
package depgraph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle is returned by AddEdge when the edge would create a cycle.
var ErrCycle = errors.New("edge would create a cycle")

// Graph is a directed graph over opaque string ids. Not safe for
// concurrent use; each sandbox request builds its own.
type Graph struct {
	adj map[string]map[string]bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[string]map[string]bool)}
}

// AddEdge inserts from→to, rejecting self-edges and anything that would
// close a cycle. Inserting an existing edge is a no-op.
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrCycle)
	}
	if g.WouldCreateCycle(from, to) {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrCycle)
	}
	if g.adj[from] == nil {
		g.adj[from] = make(map[string]bool)
	}
	g.adj[from][to] = true
	return nil
}

// RemoveEdge deletes from→to if present.
func (g *Graph) RemoveEdge(from, to string) {
	if succ, ok := g.adj[from]; ok {
		delete(succ, to)
		if len(succ) == 0 {
			delete(g.adj, from)
		}
	}
}

// WouldCreateCycle reports whether adding from→to would close a cycle,
// i.e. whether from is already reachable from to.
func (g *Graph) WouldCreateCycle(from, to string) bool {
	if from == to {
		return true
	}
	return g.reachable(to, from)
}

// Successors returns the sorted direct successors of id.
func (g *Graph) Successors(id string) []string {
	succ := g.adj[id]
	if len(succ) == 0 {
		return nil
	}
	out := make([]string, 0, len(succ))
	for s := range succ {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// reachable walks depth-first from src looking for dst.
func (g *Graph) reachable(src, dst string) bool {
	visited := make(map[string]bool)
	stack := []string{src}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == dst {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		for s := range g.adj[n] {
			stack = append(stack, s)
		}
	}
	return false
}
