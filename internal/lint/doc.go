// Package lint is the source-analysis engine the plugin drives. The plugin
// only sees the Engine interface: InProcess runs the rules in the current
// process, IsolatedWorker runs them in a separate lintgrid worker process
// started with an explicit runtime classpath.
//
// The built-in rules are deliberately small line-oriented checks; each may
// also implement Fixer so the format unit can rewrite files in place.
package lint
