package lint

import (
	"fmt"
	"slices"
)

// Rule checks one source file.
type Rule interface {
	ID() string
	Description() string
	// Check returns the violations in src. Findings carry line and column
	// only; the engine fills in File.
	Check(src []byte) []Finding
}

// Fixer is implemented by rules that can rewrite a file to remove their
// violations.
type Fixer interface {
	Fix(src []byte) []byte
}

// Standard returns the built-in rule set in its canonical order.
func Standard() []Rule {
	return []Rule{
		trailingWhitespace{},
		noSemi{},
		noWildcardImports{},
		noTabIndent{},
		noConsecutiveBlankLines{},
		finalNewline{},
	}
}

// RuleIDs returns the ids of rules, in order.
func RuleIDs(rules []Rule) []string {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID()
	}
	return ids
}

// Select returns rules minus the disabled ids. Disabling a rule that does not
// exist is an error so typos in a descriptor do not pass silently.
func Select(rules []Rule, disabled []string) ([]Rule, error) {
	known := RuleIDs(rules)
	for _, id := range disabled {
		if !slices.Contains(known, id) {
			return nil, fmt.Errorf("unknown rule %q", id)
		}
	}

	var out []Rule
	for _, r := range rules {
		if !slices.Contains(disabled, r.ID()) {
			out = append(out, r)
		}
	}
	return out, nil
}
