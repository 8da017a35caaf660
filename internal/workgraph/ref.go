package workgraph

import (
	"fmt"
	"strings"
)

// Ref is something a unit can be ordered against: a *Unit, a *Query, a
// *Group or a Path.
type Ref interface {
	refKey() string
	resolve(g *Graph, from *Unit) ([]*Unit, error)
}

// Path references a unit by path. Absolute paths start with ':' and are
// looked up across the composition; any other path is a unit name resolved
// against the dependent unit's own node.
type Path string

func (p Path) refKey() string { return "path:" + string(p) }

func (p Path) resolve(g *Graph, from *Unit) ([]*Unit, error) {
	s := string(p)
	if strings.HasPrefix(s, ":") {
		if u, ok := g.Lookup(s); ok {
			return []*Unit{u}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, s)
	}
	if u, ok := g.On(from.owner).Get(s); ok {
		return []*Unit{u}, nil
	}
	return nil, fmt.Errorf("%w: %s (relative to %s)", ErrUnknownUnit, s, from.owner.ID())
}

func (u *Unit) refKey() string { return "unit:" + u.Path() }

func (u *Unit) resolve(*Graph, *Unit) ([]*Unit, error) { return []*Unit{u}, nil }

func (q *Query) refKey() string { return fmt.Sprintf("query:%d", q.id) }

func (q *Query) resolve(*Graph, *Unit) ([]*Unit, error) { return q.Units(), nil }

func (g *Group) refKey() string { return fmt.Sprintf("group:%d", g.id) }

func (g *Group) resolve(*Graph, *Unit) ([]*Unit, error) { return g.Units(), nil }
