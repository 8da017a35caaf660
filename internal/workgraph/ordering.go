package workgraph

import "slices"

// Dependable is a unit or a live collection of units that ordering edges can
// be attached to.
type Dependable interface {
	Observe(fn func(*Unit))
}

// DependOn records every ref as a hard predecessor of every unit in target,
// including units that join a live target later. Adding an existing edge is a
// no-op.
func DependOn(target Dependable, refs ...Ref) {
	refs = slices.Clone(refs)
	target.Observe(func(u *Unit) {
		for _, r := range refs {
			u.dependsOn.add(r)
		}
	})
}

// MustRunAfter records every ref as an ordering-only constraint of every unit
// in target: the unit never starts before the refs finish, but the refs need
// not succeed or run at all.
func MustRunAfter(target Dependable, refs ...Ref) {
	refs = slices.Clone(refs)
	target.Observe(func(u *Unit) {
		for _, r := range refs {
			u.mustRunAfter.add(r)
		}
	})
}
