package workgraph

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/lintgrid/internal/workspace"
)

// Query is a live collection of the units of one node that match a
// predicate.
type Query struct {
	id   int
	node *workspace.Node
	name string
	kind Kind

	units     []*Unit
	seen      map[*Unit]struct{}
	observers []func(*Unit)
}

// Node returns the node the query is scoped to.
func (q *Query) Node() *workspace.Node { return q.node }

// Units returns the current members in the order they joined.
func (q *Query) Units() []*Unit { return slices.Clone(q.units) }

// Len returns the current number of members.
func (q *Query) Len() int { return len(q.units) }

// Observe calls fn for every current member now and for every future member
// at the moment it joins.
func (q *Query) Observe(fn func(*Unit)) {
	q.observers = append(q.observers, fn)
	for _, u := range slices.Clone(q.units) {
		fn(u)
	}
}

// DependOn adds hard predecessors to every current and future member.
func (q *Query) DependOn(refs ...Ref) { DependOn(q, refs...) }

// MustRunAfter adds ordering-only constraints to every current and future
// member.
func (q *Query) MustRunAfter(refs ...Ref) { MustRunAfter(q, refs...) }

// String implements fmt.Stringer.
func (q *Query) String() string {
	return fmt.Sprintf("query(%s name=%q kind=%q)", q.node.ID(), q.name, q.kind)
}

func (q *Query) matches(u *Unit) bool {
	if q.name != "" && u.name != q.name {
		return false
	}
	return q.kind == KindAny || u.kind == q.kind
}

func (q *Query) add(u *Unit) {
	if _, dup := q.seen[u]; dup {
		return
	}
	q.seen[u] = struct{}{}
	q.units = append(q.units, u)
	for _, obs := range slices.Clone(q.observers) {
		obs(u)
	}
}

// NodeQuery pairs a node with its live query.
type NodeQuery struct {
	Node  *workspace.Node
	Query *Query
}

// Group aggregates one live query per node, as returned by the multi-node
// queries.
type Group struct {
	id      int
	entries []NodeQuery
}

// Entries returns the per-node queries in composition order.
func (g *Group) Entries() []NodeQuery { return slices.Clone(g.entries) }

// For returns the query of node, if node is part of the group.
func (g *Group) For(node *workspace.Node) (*Query, bool) {
	for _, e := range g.entries {
		if e.Node == node {
			return e.Query, true
		}
	}
	return nil, false
}

// Units flattens the current members of every per-node query.
func (g *Group) Units() []*Unit {
	var out []*Unit
	for _, e := range g.entries {
		out = append(out, e.Query.units...)
	}
	return out
}

// Len returns the total number of current members.
func (g *Group) Len() int {
	n := 0
	for _, e := range g.entries {
		n += e.Query.Len()
	}
	return n
}

// Observe attaches fn to every per-node query.
func (g *Group) Observe(fn func(*Unit)) {
	for _, e := range g.entries {
		e.Query.Observe(fn)
	}
}

// DependOn adds hard predecessors to every current and future member.
func (g *Group) DependOn(refs ...Ref) { DependOn(g, refs...) }

// MustRunAfter adds ordering-only constraints to every current and future
// member.
func (g *Group) MustRunAfter(refs ...Ref) { MustRunAfter(g, refs...) }
