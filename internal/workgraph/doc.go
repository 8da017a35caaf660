// Package workgraph is the registry of named work units across a workspace
// composition.
//
// Every workspace node owns a Registry. Registration is idempotent: asking for
// a unit that already exists reconfigures it instead of creating a duplicate.
// Queries are live. A Query keeps its predicate and is notified synchronously
// by the registry whenever a matching unit is registered later, so callers can
// attach edges to units that do not exist yet:
//
//	checks := g.Matching(node, "check", workgraph.KindAny)
//	checks.DependOn(workgraph.Path("format"))
//	g.MaybeRegister(node, "check", nil) // already depends on "format"
//
// Ordering edges come in two flavors. DependOn records hard predecessors that
// must succeed before the dependent runs. MustRunAfter records ordering-only
// constraints that neither require the other unit to succeed nor to run at
// all. This package only records edges; the dag and executor packages enforce
// them.
//
// The registry is used from the single configuration goroutine and is not
// safe for concurrent mutation.
package workgraph
