// Package plugin applies the lint plugin to workspace nodes.
//
// Every module that applies the plugin gets three units:
//
//	format  rewrites sources with the rule fixers
//	lint    analyzes sources; must run after format when both are scheduled
//	check   lifecycle unit depending on lint
//
// The real root additionally gets lintReport, which depends on every lint
// unit of the composition through a live real-root query, and
// workerConstants, which writes the generated constants for the frozen
// isolated-worker classpath.
package plugin
