package workgraph

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/lintgrid/internal/config"
	"github.com/specialistvlad/lintgrid/internal/workspace"
)

// Graph owns the registries of every node in one composition for the length
// of a configuration session.
type Graph struct {
	composition *workspace.Composition
	registries  map[*workspace.Node]*Registry
	sealed      bool
	nextID      int
}

// New creates an empty graph for c.
func New(c *workspace.Composition) *Graph {
	return &Graph{
		composition: c,
		registries:  make(map[*workspace.Node]*Registry),
	}
}

// Composition returns the composition the graph is scoped to.
func (g *Graph) Composition() *workspace.Composition { return g.composition }

// On returns the registry of node, creating it on first use. Passing a node
// of another composition is a programming error.
func (g *Graph) On(node *workspace.Node) *Registry {
	if node.Build().Composition() != g.composition {
		panic(fmt.Sprintf("workgraph: node %s belongs to a different composition", node.ID()))
	}
	r, ok := g.registries[node]
	if !ok {
		r = newRegistry(g, node)
		g.registries[node] = r
	}
	return r
}

// MaybeRegister registers or reconfigures the unit name on node.
func (g *Graph) MaybeRegister(node *workspace.Node, name string, configure func(*Unit)) (*Unit, error) {
	return g.On(node).MaybeRegister(name, configure)
}

// RegisterOnce registers or reconfigures the unit name of the given kind on
// node.
func (g *Graph) RegisterOnce(node *workspace.Node, name string, kind Kind, configure func(*Unit)) (*Unit, error) {
	return g.On(node).RegisterOnce(name, kind, configure)
}

// Matching returns a live query over the units of node.
func (g *Graph) Matching(node *workspace.Node, name string, kind Kind) *Query {
	return g.On(node).Matching(name, kind)
}

// RealRootMatching returns one live query per node of the whole composition,
// included builds too. It may only be called from the real root.
func (g *Graph) RealRootMatching(node *workspace.Node, name string, kind Kind) (*Group, error) {
	if !node.IsRealRoot() {
		return nil, config.Wrap("workgraph.realRootMatching", fmt.Errorf("%w: called from %s", ErrNotRealRoot, node.ID()))
	}
	return g.group(g.composition.Nodes(), name, kind), nil
}

// SubtreeMatching returns one live query per node in node's subtree. It can
// be called from any node and never fails.
func (g *Graph) SubtreeMatching(node *workspace.Node, name string, kind Kind) *Group {
	return g.group(node.Subtree(), name, kind)
}

func (g *Graph) group(nodes []*workspace.Node, name string, kind Kind) *Group {
	grp := &Group{id: g.allocID()}
	for _, n := range nodes {
		grp.entries = append(grp.entries, NodeQuery{Node: n, Query: g.Matching(n, name, kind)})
	}
	return grp
}

func (g *Graph) newQuery(node *workspace.Node, name string, kind Kind) *Query {
	return &Query{
		id:   g.allocID(),
		node: node,
		name: name,
		kind: kind,
		seen: make(map[*Unit]struct{}),
	}
}

func (g *Graph) allocID() int {
	g.nextID++
	return g.nextID
}

// Seal ends the configuration session. Later registrations fail.
func (g *Graph) Seal() { g.sealed = true }

// Sealed reports whether Seal was called.
func (g *Graph) Sealed() bool { return g.sealed }

// Lookup finds a unit by its composition-wide path.
func (g *Graph) Lookup(path string) (*Unit, bool) {
	i := strings.LastIndex(path, ":")
	if i < 0 {
		return nil, false
	}
	nodeID, name := path[:i], path[i+1:]
	if nodeID == "" {
		nodeID = ":"
	}
	node, ok := g.composition.Find(nodeID)
	if !ok {
		return nil, false
	}
	r, ok := g.registries[node]
	if !ok {
		return nil, false
	}
	return r.Get(name)
}

// Units returns every unit in composition order, then registration order.
func (g *Graph) Units() []*Unit {
	var out []*Unit
	for _, n := range g.composition.Nodes() {
		if r, ok := g.registries[n]; ok {
			out = append(out, r.order...)
		}
	}
	return out
}

// Resolve expands ref into units, relative to the dependent unit from.
func (g *Graph) Resolve(from *Unit, ref Ref) ([]*Unit, error) {
	return ref.resolve(g, from)
}

// HardPredecessors resolves every DependOn ref of u, deduplicated and in
// declaration order.
func (g *Graph) HardPredecessors(u *Unit) ([]*Unit, error) {
	return g.resolveAll(u, u.dependsOn.refs)
}

// OrderingPredecessors resolves every MustRunAfter ref of u.
func (g *Graph) OrderingPredecessors(u *Unit) ([]*Unit, error) {
	return g.resolveAll(u, u.mustRunAfter.refs)
}

func (g *Graph) resolveAll(u *Unit, refs []Ref) ([]*Unit, error) {
	var out []*Unit
	seen := make(map[*Unit]struct{})
	for _, r := range refs {
		units, err := r.resolve(g, u)
		if err != nil {
			return nil, fmt.Errorf("resolving predecessors of %s: %w", u.Path(), err)
		}
		for _, p := range units {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out, nil
}
