package classpath

import (
	"fmt"
	"regexp"
	"strings"
)

var partRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Entry is a module coordinate on the worker classpath.
type Entry struct {
	Group   string
	Name    string
	Version string
}

// ParseEntry parses a "group:name:version" coordinate.
func ParseEntry(s string) (Entry, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Entry{}, fmt.Errorf("invalid classpath coordinate %q: want group:name:version", s)
	}
	for _, p := range parts {
		if !partRegex.MatchString(p) {
			return Entry{}, fmt.Errorf("invalid classpath coordinate %q: bad segment %q", s, p)
		}
	}
	return Entry{Group: parts[0], Name: parts[1], Version: parts[2]}, nil
}

// MustParseEntry is ParseEntry for static coordinates. It panics on error.
func MustParseEntry(s string) Entry {
	e, err := ParseEntry(s)
	if err != nil {
		panic(err)
	}
	return e
}

// ParseEntries parses every coordinate in order.
func ParseEntries(ss []string) ([]Entry, error) {
	out := make([]Entry, 0, len(ss))
	for _, s := range ss {
		e, err := ParseEntry(s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// String returns the coordinate form.
func (e Entry) String() string {
	return e.Group + ":" + e.Name + ":" + e.Version
}

// Strings converts entries back to coordinates.
func Strings(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}
