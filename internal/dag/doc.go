// Package dag is the plan graph the executor runs. Nodes are unit paths;
// edges are either hard dependencies (the dependent needs the predecessor to
// succeed) or ordering-only constraints (the dependent only waits for the
// predecessor to finish, whatever its outcome).
//
// Both edge kinds take part in cycle detection and in the topological order.
// Ties in the order are broken by insertion order, so a plan built from the
// same registrations is always executed the same way.
package dag
