package workgraph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/lintgrid/internal/config"
	"github.com/specialistvlad/lintgrid/internal/workspace"
)

// Registry maps unique names to the units of one workspace node, and keeps the
// live queries subscribed to that node.
type Registry struct {
	graph *Graph
	node  *workspace.Node

	units       map[string]*Unit
	order       []*Unit
	subscribers []*Query
}

func newRegistry(g *Graph, node *workspace.Node) *Registry {
	return &Registry{
		graph: g,
		node:  node,
		units: make(map[string]*Unit),
	}
}

// Node returns the node owning the registry.
func (r *Registry) Node() *workspace.Node { return r.node }

// Get returns the unit registered under name.
func (r *Registry) Get(name string) (*Unit, bool) {
	u, ok := r.units[name]
	return u, ok
}

// Units returns the node's units in registration order.
func (r *Registry) Units() []*Unit { return slices.Clone(r.order) }

// MaybeRegister applies configure to the unit named name, creating and
// registering it first when it does not exist yet. Repeated calls with the
// same name never create a second unit.
func (r *Registry) MaybeRegister(name string, configure func(*Unit)) (*Unit, error) {
	if err := r.checkRegistration(name); err != nil {
		return nil, err
	}
	if u, ok := r.units[name]; ok {
		u.configure(configure)
		return u, nil
	}
	return r.register(name, KindDefault, configure), nil
}

// RegisterOnce is the typed variant of MaybeRegister. An existing unit with
// the same name and kind is reconfigured and returned; one with another kind
// is an error, since names are unique per node.
func (r *Registry) RegisterOnce(name string, kind Kind, configure func(*Unit)) (*Unit, error) {
	if err := r.checkRegistration(name); err != nil {
		return nil, err
	}
	if kind == KindAny {
		kind = KindDefault
	}
	if u, ok := r.units[name]; ok {
		if u.kind != kind {
			return nil, config.Wrap("workgraph.register",
				fmt.Errorf("%w: %s is %q, requested %q", ErrKindMismatch, u.Path(), u.kind, kind))
		}
		u.configure(configure)
		return u, nil
	}
	return r.register(name, kind, configure), nil
}

// Matching returns a live query over units named name (any name when empty)
// whose kind equals kind (any kind for KindAny).
func (r *Registry) Matching(name string, kind Kind) *Query {
	q := r.graph.newQuery(r.node, name, kind)
	for _, u := range r.order {
		if q.matches(u) {
			q.add(u)
		}
	}
	r.subscribers = append(r.subscribers, q)
	return q
}

func (r *Registry) checkRegistration(name string) error {
	if r.graph.sealed {
		return config.Wrap("workgraph.register", fmt.Errorf("%w: %s", ErrSealed, JoinPath(r.node.ID(), name)))
	}
	if name == "" || strings.Contains(name, ":") {
		return config.Wrap("workgraph.register", fmt.Errorf("%w: %q", ErrInvalidName, name))
	}
	return nil
}

// register creates the unit, applies configure, stores it and only then
// announces it, so observers always see a configured unit.
func (r *Registry) register(name string, kind Kind, configure func(*Unit)) *Unit {
	u := newUnit(r.node, name, kind)
	u.configure(configure)
	r.units[name] = u
	r.order = append(r.order, u)

	// Observers may create queries on this registry; those are seeded with u
	// already, so only the subscribers present now are notified.
	for _, q := range slices.Clone(r.subscribers) {
		if q.matches(u) {
			q.add(u)
		}
	}
	return u
}
