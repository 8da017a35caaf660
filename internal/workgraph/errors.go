package workgraph

import "errors"

var (
	// ErrNotRealRoot is returned by real-root-only queries invoked from any
	// other node.
	ErrNotRealRoot = errors.New("query is only allowed from the real root of the build composition")
	// ErrSealed is returned when registering after the configuration
	// session ended.
	ErrSealed = errors.New("work graph is sealed; units can only be registered during configuration")
	// ErrKindMismatch is returned by RegisterOnce when the name is taken by a
	// unit of another kind.
	ErrKindMismatch = errors.New("unit already registered with a different kind")
	// ErrInvalidName is returned for empty names or names containing ':'.
	ErrInvalidName = errors.New("invalid unit name")
	// ErrUnknownUnit is returned when a reference does not resolve.
	ErrUnknownUnit = errors.New("unit not found")
)
