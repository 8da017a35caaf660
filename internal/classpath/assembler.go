package classpath

import (
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/lintgrid/internal/config"
)

var (
	// ErrEmpty is returned when freezing an assembler that collected nothing.
	ErrEmpty = errors.New("there are no dependencies to pass along to the isolated worker's classpath; is there a race condition?")
	// ErrFrozen is returned when the assembler is used after its freeze.
	ErrFrozen = errors.New("the isolated worker's classpath is already frozen")
)

// Assembler collects classpath entries during configuration and freezes them
// into an order-stable list.
type Assembler struct {
	entries []Entry
	seen    map[Entry]struct{}
	frozen  bool
}

// NewAssembler returns an assembler in the collecting state.
func NewAssembler() *Assembler {
	return &Assembler{seen: make(map[Entry]struct{})}
}

// Register adds e unless an equal coordinate is already present. It fails
// once the assembler is frozen.
func (a *Assembler) Register(e Entry) error {
	if a.frozen {
		return config.Wrap("classpath.register", fmt.Errorf("%w: cannot register %s", ErrFrozen, e))
	}
	if _, dup := a.seen[e]; dup {
		return nil
	}
	a.seen[e] = struct{}{}
	a.entries = append(a.entries, e)
	return nil
}

// RegisterAll registers every entry in order, stopping at the first error.
func (a *Assembler) RegisterAll(entries ...Entry) error {
	for _, e := range entries {
		if err := a.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// Freeze transitions the assembler to frozen and returns the entries in
// insertion order. Freezing an empty assembler, or freezing twice, fails.
// A failed empty freeze leaves the assembler collecting.
func (a *Assembler) Freeze() ([]Entry, error) {
	if a.frozen {
		return nil, config.Wrap("classpath.freeze", ErrFrozen)
	}
	if len(a.entries) == 0 {
		return nil, config.Wrap("classpath.freeze", ErrEmpty)
	}
	a.frozen = true
	return slices.Clone(a.entries), nil
}

// Frozen reports whether Freeze succeeded.
func (a *Assembler) Frozen() bool { return a.frozen }

// Len returns the number of collected entries.
func (a *Assembler) Len() int { return len(a.entries) }

// Entries returns a copy of the collected entries in insertion order.
func (a *Assembler) Entries() []Entry { return slices.Clone(a.entries) }
