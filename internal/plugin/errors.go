package plugin

import "errors"

var (
	// ErrLintFailed is returned by a lint unit that recorded findings.
	ErrLintFailed = errors.New("lint found violations")
	// ErrNotFrozen is returned when a unit needs the runtime classpath
	// before the configuration phase froze it.
	ErrNotFrozen = errors.New("the isolated worker's classpath is not frozen yet")
)
