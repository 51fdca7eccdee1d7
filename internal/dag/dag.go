package dag

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Graph is a directed acyclic graph keyed by dotted configuration paths.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*vertex
}

type vertex struct {
	id         string
	deps       map[string]*vertex
	dependents map[string]*vertex
}

// CycleError reports a dependency cycle. Members lists the vertices of the
// cycle in traversal order.
type CycleError struct {
	Members []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if len(e.Members) == 1 {
		return fmt.Sprintf("self-referential dependency on %q", e.Members[0])
	}
	return fmt.Sprintf("dependency cycle: %s -> %s",
		strings.Join(e.Members, " -> "), e.Members[0])
}

// New creates an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*vertex)}
}

// AddNode adds a vertex with the given ID. Adding an existing ID is a no-op.
func (g *Graph) AddNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &vertex{
		id:         id,
		deps:       make(map[string]*vertex),
		dependents: make(map[string]*vertex),
	}
}

// HasNode reports whether the given ID is in the graph.
func (g *Graph) HasNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of vertices.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

// AddEdge records that toID depends on fromID. Both vertices must already
// exist; a self-referential edge is reported as a single-member CycleError.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return &CycleError{Members: []string{fromID}}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	from, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	to, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	to.deps[fromID] = from
	from.dependents[toID] = to
	return nil
}

// Dependencies returns the sorted IDs the given vertex depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	deps := make([]string, 0, len(v.deps))
	for depID := range v.deps {
		deps = append(deps, depID)
	}
	sort.Strings(deps)
	return deps, nil
}

// DetectCycles checks the whole graph and returns a CycleError naming the
// members of the first cycle found, or nil when the graph is acyclic.
func (g *Graph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.findCycleLocked()
}

// findCycleLocked runs a depth-first search with the classic three states:
// unvisited, on the current stack, and fully explored.
func (g *Graph) findCycleLocked() error {
	done := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	// Deterministic traversal order so the reported cycle is stable.
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var visit func(v *vertex) *CycleError
	visit = func(v *vertex) *CycleError {
		if done[v.id] {
			return nil
		}
		if onStack[v.id] {
			// Slice the stack from the first occurrence of v to get the
			// actual cycle members.
			for i, id := range stack {
				if id == v.id {
					return &CycleError{Members: append([]string(nil), stack[i:]...)}
				}
			}
			return &CycleError{Members: []string{v.id}}
		}

		onStack[v.id] = true
		stack = append(stack, v.id)

		depIDs := make([]string, 0, len(v.deps))
		for id := range v.deps {
			depIDs = append(depIDs, id)
		}
		sort.Strings(depIDs)
		for _, id := range depIDs {
			if cycle := visit(v.deps[id]); cycle != nil {
				return cycle
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, v.id)
		done[v.id] = true
		return nil
	}

	for _, id := range ids {
		if cycle := visit(g.nodes[id]); cycle != nil {
			return cycle
		}
	}
	return nil
}

// TopologicalOrder returns every vertex ID ordered so that each appears
// after all of its dependencies. Ties break alphabetically, making the
// order deterministic. Returns a CycleError when no such order exists.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	pending := make(map[string]int, len(g.nodes))
	var ready []string
	for id, v := range g.nodes {
		pending[id] = len(v.deps)
		if len(v.deps) == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var unblocked []string
		for depID := range g.nodes[id].dependents {
			pending[depID]--
			if pending[depID] == 0 {
				unblocked = append(unblocked, depID)
			}
		}
		sort.Strings(unblocked)
		ready = mergeSorted(ready, unblocked)
	}

	if len(order) != len(g.nodes) {
		if err := g.findCycleLocked(); err != nil {
			return nil, err
		}
		// Unreachable: an incomplete Kahn pass implies a cycle.
		return nil, &CycleError{Members: nil}
	}
	return order, nil
}

func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
