package dag

import "sync"

// Graph is an execution plan: units as nodes, with hard and ordering-only
// edges between them. It is safe for concurrent use.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
	// order holds node IDs as they were added; seq indexes into it.
	order []string
}

// node is only reachable through its ID.
type node struct {
	id  string
	seq int

	// Hard edges: deps must succeed first, dependents wait on this node.
	deps       map[string]*node
	dependents map[string]*node

	// Ordering-only edges: after must finish first, whatever its outcome;
	// before waits on this node.
	after  map[string]*node
	before map[string]*node
}
