package executor

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/lintgrid/internal/dag"
	"github.com/specialistvlad/lintgrid/internal/workgraph"
)

// Plan is the set of units selected for one execution, with their edges.
type Plan struct {
	graph *dag.Graph
	units map[string]*workgraph.Unit
	order []string
}

// NewPlan selects the units named by tasks from g. A task without a colon
// selects every unit of that name in the outermost build; a task starting
// with a colon is a unit path anywhere in the composition. The hard
// predecessors of selected units are selected as well; ordering-only
// constraints never pull in units.
func NewPlan(g *workgraph.Graph, tasks []string) (*Plan, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no tasks requested")
	}

	selected := make(map[*workgraph.Unit]bool)
	var queue []*workgraph.Unit
	for _, task := range tasks {
		units, err := selectTask(g, task)
		if err != nil {
			return nil, err
		}
		for _, u := range units {
			if !selected[u] {
				selected[u] = true
				queue = append(queue, u)
			}
		}
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		preds, err := g.HardPredecessors(u)
		if err != nil {
			return nil, err
		}
		for _, p := range preds {
			if !selected[p] {
				selected[p] = true
				queue = append(queue, p)
			}
		}
	}

	p := &Plan{graph: dag.New(), units: make(map[string]*workgraph.Unit, len(selected))}
	var members []*workgraph.Unit
	for _, u := range g.Units() {
		if selected[u] {
			members = append(members, u)
			p.units[u.Path()] = u
			p.graph.AddNode(u.Path())
		}
	}

	for _, u := range members {
		hard, err := g.HardPredecessors(u)
		if err != nil {
			return nil, err
		}
		for _, pred := range hard {
			if err := p.graph.AddEdge(pred.Path(), u.Path()); err != nil {
				return nil, err
			}
		}
		soft, err := g.OrderingPredecessors(u)
		if err != nil {
			return nil, err
		}
		for _, pred := range soft {
			if !selected[pred] {
				continue
			}
			if err := p.graph.AddOrderingEdge(pred.Path(), u.Path()); err != nil {
				return nil, err
			}
		}
	}

	if err := p.graph.DetectCycles(); err != nil {
		return nil, err
	}
	order, err := p.graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	p.order = order
	return p, nil
}

func selectTask(g *workgraph.Graph, task string) ([]*workgraph.Unit, error) {
	if strings.HasPrefix(task, ":") {
		u, ok := g.Lookup(task)
		if !ok {
			return nil, fmt.Errorf("%w: task %q not found", workgraph.ErrUnknownUnit, task)
		}
		return []*workgraph.Unit{u}, nil
	}
	if task == "" || strings.Contains(task, ":") {
		return nil, fmt.Errorf("%w: invalid task name %q", workgraph.ErrInvalidName, task)
	}

	var out []*workgraph.Unit
	for _, n := range g.Composition().RealRoot().Subtree() {
		if u, ok := g.On(n).Get(task); ok {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: task %q not found in root build %s", workgraph.ErrUnknownUnit, task, g.Composition().Root().Name())
	}
	return out, nil
}

// Paths returns the selected unit paths in a valid execution order.
func (p *Plan) Paths() []string { return append([]string(nil), p.order...) }

// Len returns the number of selected units.
func (p *Plan) Len() int { return len(p.order) }

// Unit returns the selected unit at path.
func (p *Plan) Unit(path string) (*workgraph.Unit, bool) {
	u, ok := p.units[path]
	return u, ok
}
