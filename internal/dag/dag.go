package dag

import (
	"fmt"
	"slices"
)

// EdgeKind distinguishes hard dependencies from ordering-only constraints.
type EdgeKind int

const (
	// Hard edges require the predecessor to succeed.
	Hard EdgeKind = iota
	// Ordering edges only require the predecessor to finish.
	Ordering
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		seq:        len(g.order),
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
		after:      make(map[string]*node),
		before:     make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// Has reports whether a node with the given ID exists.
func (g *Graph) Has(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Nodes returns every node ID in insertion order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return slices.Clone(g.order)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist or if the edge would create a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	return g.addEdge(fromID, toID, Hard)
}

// AddOrderingEdge records that `toID` must not start before `fromID`
// finishes, without depending on its outcome.
func (g *Graph) AddOrderingEdge(fromID, toID string) error {
	return g.addEdge(fromID, toID, Ordering)
}

func (g *Graph) addEdge(fromID, toID string, kind EdgeKind) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	switch kind {
	case Hard:
		toNode.deps[fromID] = fromNode
		fromNode.dependents[toID] = toNode
	case Ordering:
		toNode.after[fromID] = fromNode
		fromNode.before[toID] = toNode
	}
	return nil
}

// Dependencies returns the IDs of the nodes the given node hard-depends on,
// in insertion order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	return g.neighbours(id, func(n *node) map[string]*node { return n.deps })
}

// Dependents returns the IDs of the nodes that hard-depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	return g.neighbours(id, func(n *node) map[string]*node { return n.dependents })
}

// OrderingPredecessors returns the IDs the given node must run after.
func (g *Graph) OrderingPredecessors(id string) ([]string, error) {
	return g.neighbours(id, func(n *node) map[string]*node { return n.after })
}

// OrderingSuccessors returns the IDs that must run after the given node.
func (g *Graph) OrderingSuccessors(id string) ([]string, error) {
	return g.neighbours(id, func(n *node) map[string]*node { return n.before })
}

func (g *Graph) neighbours(id string, pick func(*node) map[string]*node) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedIDs(pick(n)), nil
}

func sortedIDs(set map[string]*node) []string {
	nodes := make([]*node, 0, len(set))
	for _, n := range set {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *node) int { return a.seq - b.seq })
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.id
	}
	return ids
}

// DetectCycles checks the graph for any cycles over both edge kinds. It
// returns a non-nil error if a cycle is found, indicating the first node
// involved in the detected cycle.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Use classic depth-first search with three sets of nodes:
	// permanent: nodes that have been fully visited and are not part of a cycle.
	// temporary: nodes currently in the recursion stack for the current traversal.
	// unvisited: all other nodes.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return fmt.Errorf("cycle detected involving node '%s'", n.id)
		}

		temporary[n.id] = true
		for _, next := range successors(n) {
			if err := visit(next); err != nil {
				return err
			}
		}
		delete(temporary, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}

// TopologicalOrder returns every node ID such that each node comes after all
// its hard and ordering predecessors. Among ready nodes the one inserted first
// wins.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	inDegree := make(map[string]int, len(g.nodes))
	var ready []*node
	for _, id := range g.order {
		n := g.nodes[id]
		inDegree[id] = len(n.deps) + len(n.after)
		if inDegree[id] == 0 {
			ready = append(ready, n)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		slices.SortFunc(ready, func(a, b *node) int { return a.seq - b.seq })
		current := ready[0]
		ready = ready[1:]
		result = append(result, current.id)

		for _, next := range successors(current) {
			inDegree[next.id]--
			if inDegree[next.id] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, fmt.Errorf("cycle detected in plan graph")
	}
	return result, nil
}

// successors returns hard and ordering successors of n in insertion order.
// A node reachable through both edge kinds appears twice, which keeps the
// in-degree bookkeeping of TopologicalOrder exact.
func successors(n *node) []*node {
	out := make([]*node, 0, len(n.dependents)+len(n.before))
	for _, m := range n.dependents {
		out = append(out, m)
	}
	for _, m := range n.before {
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b *node) int { return a.seq - b.seq })
	return out
}
