// Package workspace models the module hierarchy of a build composition.
//
// A Composition is the outermost build plus every build it includes,
// directly or transitively. Each Build owns a tree of Nodes rooted at its
// build root. Exactly one node in a composition is the real root: the root
// node of the outermost build. The build-context value (which composition,
// which per-build root) is carried by the Node itself, so callers never need
// an ambient "current build".
//
// Node paths are build-local (":" for a build root, ":lib:core" for nested
// modules). Node IDs are composition-wide: equal to the path in the
// outermost build, prefixed with ":<build-name>" inside included builds.
package workspace
