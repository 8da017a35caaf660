// Package executor turns requested task names into an execution plan and
// runs it.
//
// Planning selects units, adds their hard predecessors transitively and
// builds a dag.Graph with both edge kinds. Running uses one coordinating
// goroutine that owns all plan state and a fixed pool of workers that only
// execute unit actions, reporting back over a channel.
package executor
