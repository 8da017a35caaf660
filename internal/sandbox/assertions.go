package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/lintgrid/internal/workgraph"
)

// UnitOutcome asserts that the unit at path executed with outcome.
func UnitOutcome(path string, outcome workgraph.Outcome) Assertion {
	return func(t testing.TB, r *Result) {
		t.Helper()
		got, ok := r.Outcome(path)
		require.True(t, ok, "unit %s did not execute\n%s", path, r.Output)
		assert.Equal(t, outcome, got, "outcome of %s", path)
	}
}

// NotExecuted asserts that the unit at path did not execute.
func NotExecuted(path string) Assertion {
	return func(t testing.TB, r *Result) {
		t.Helper()
		_, ok := r.Outcome(path)
		assert.False(t, ok, "unit %s executed", path)
	}
}

// NoFailures asserts that no unit failed.
func NoFailures() Assertion {
	return func(t testing.TB, r *Result) {
		t.Helper()
		assert.Empty(t, r.Paths(workgraph.OutcomeFailed), "failed units")
	}
}

// OutputContains asserts that the build output contains s.
func OutputContains(s string) Assertion {
	return func(t testing.TB, r *Result) {
		t.Helper()
		assert.Contains(t, r.Output, s)
	}
}
