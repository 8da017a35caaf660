package workgraph

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/lintgrid/internal/workspace"
)

// Kind tags a unit for type-scoped queries. It replaces runtime type
// inspection: kinds are compared by equality.
type Kind string

const (
	// KindAny disables the kind filter of a query.
	KindAny Kind = ""
	// KindDefault is the kind of units created by MaybeRegister.
	KindDefault Kind = "default"
)

// State is the lifecycle state of a unit.
type State int

const (
	// StateRegistered means the unit exists but no configure block ran yet.
	StateRegistered State = iota
	// StateConfigured means at least one configure block was applied.
	StateConfigured
	// StateExecuted means the executor finished running the unit.
	StateExecuted
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateConfigured:
		return "configured"
	case StateExecuted:
		return "executed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the per-unit result reported by an execution.
type Outcome string

const (
	OutcomeSuccess  Outcome = "SUCCESS"
	OutcomeFailed   Outcome = "FAILED"
	OutcomeSkipped  Outcome = "SKIPPED"
	OutcomeUpToDate Outcome = "UP-TO-DATE"
)

// ParseOutcome parses the textual form of an outcome.
func ParseOutcome(s string) (Outcome, bool) {
	switch o := Outcome(s); o {
	case OutcomeSuccess, OutcomeFailed, OutcomeSkipped, OutcomeUpToDate:
		return o, true
	}
	return "", false
}

// Action is the work a unit performs when executed. A nil error with an empty
// outcome counts as success.
type Action func(ctx context.Context, u *Unit) (Outcome, error)

// Unit is a named piece of work owned by a single workspace node.
type Unit struct {
	name  string
	kind  Kind
	owner *workspace.Node
	state State

	// Description is shown by the tasks listing.
	Description string
	// Group clusters units in the tasks listing.
	Group string
	// Action runs when the unit executes. Units without an action are
	// lifecycle units and always succeed.
	Action Action

	dependsOn    edgeSet
	mustRunAfter edgeSet
}

func newUnit(owner *workspace.Node, name string, kind Kind) *Unit {
	return &Unit{name: name, kind: kind, owner: owner}
}

// Name returns the node-unique unit name.
func (u *Unit) Name() string { return u.name }

// Kind returns the unit's kind tag.
func (u *Unit) Kind() Kind { return u.kind }

// Owner returns the node that owns the unit.
func (u *Unit) Owner() *workspace.Node { return u.owner }

// State returns the lifecycle state.
func (u *Unit) State() State { return u.state }

// MarkExecuted is called by the executor once the unit has run.
func (u *Unit) MarkExecuted() { u.state = StateExecuted }

// Path returns the composition-wide unit path, e.g. ":lint" or ":app:lint".
func (u *Unit) Path() string {
	return JoinPath(u.owner.ID(), u.name)
}

// String implements fmt.Stringer.
func (u *Unit) String() string { return u.Path() }

// Dependencies returns the hard-predecessor refs in the order they were added.
func (u *Unit) Dependencies() []Ref { return u.dependsOn.list() }

// OrderingConstraints returns the ordering-only refs in the order they were
// added.
func (u *Unit) OrderingConstraints() []Ref { return u.mustRunAfter.list() }

// Observe calls fn with the unit itself, making a single unit usable
// wherever a live collection is accepted.
func (u *Unit) Observe(fn func(*Unit)) { fn(u) }

// DependOn adds hard predecessors to the unit.
func (u *Unit) DependOn(refs ...Ref) { DependOn(u, refs...) }

// MustRunAfter adds ordering-only constraints to the unit.
func (u *Unit) MustRunAfter(refs ...Ref) { MustRunAfter(u, refs...) }

func (u *Unit) configure(fn func(*Unit)) {
	if fn != nil {
		fn(u)
	}
	u.state = StateConfigured
}

// JoinPath builds a unit path from a node ID and a unit name.
func JoinPath(nodeID, name string) string {
	if nodeID == ":" {
		return ":" + name
	}
	return nodeID + ":" + name
}

// edgeSet is an insertion-ordered set of refs, keyed by ref identity.
type edgeSet struct {
	refs []Ref
	keys map[string]struct{}
}

func (s *edgeSet) add(r Ref) bool {
	key := r.refKey()
	if _, ok := s.keys[key]; ok {
		return false
	}
	if s.keys == nil {
		s.keys = make(map[string]struct{})
	}
	s.keys[key] = struct{}{}
	s.refs = append(s.refs, r)
	return true
}

func (s *edgeSet) list() []Ref { return slices.Clone(s.refs) }
