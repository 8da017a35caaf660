package sandbox

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/lintgrid/internal/workgraph"
)

func TestNewResult(t *testing.T) {
	output := `> Task :app:format UP-TO-DATE
time=2026-01-01T00:00:00Z level=WARN msg="Ignoring lint findings."
> Task :app:lint FAILED
:app:lint: src/Main.kt:1:10: unnecessary semicolon (no-semi)
> Task :lib:lint SKIPPED
> Task :lintReport BOGUS

BUILD FAILED
`
	r := newResult(output, 1)

	want := []UnitResult{
		{Path: ":app:format", Outcome: workgraph.OutcomeUpToDate},
		{Path: ":app:lint", Outcome: workgraph.OutcomeFailed},
		{Path: ":lib:lint", Outcome: workgraph.OutcomeSkipped},
	}
	if diff := cmp.Diff(want, r.Units); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, r.Succeeded)
	assert.Equal(t, []string{":app:lint"}, r.Paths(workgraph.OutcomeFailed))

	o, ok := r.Outcome(":lib:lint")
	assert.True(t, ok)
	assert.Equal(t, workgraph.OutcomeSkipped, o)
	_, ok = r.Outcome(":lintReport")
	assert.False(t, ok, "unknown outcomes are not units")
}

func TestNewResult_Succeeded(t *testing.T) {
	assert.True(t, newResult("> Task :check SUCCESS\n", 0).Succeeded)
	assert.False(t, newResult("> Task :check SUCCESS\n", 1).Succeeded, "a failing exit status fails the result")
	assert.False(t, newResult("> Task :lint FAILED\n", 0).Succeeded, "a failed unit fails the result")
}

func TestCheck(t *testing.T) {
	testCases := []struct {
		name      string
		inv       Invocation
		result    *Result
		wantError bool
	}{
		{name: "expected success", inv: Invocation{ExpectSuccess: true}, result: newResult("> Task :a SUCCESS\n", 0)},
		{name: "expected success, exit status", inv: Invocation{ExpectSuccess: true}, result: newResult("", 1), wantError: true},
		{name: "expected success, failed unit", inv: Invocation{ExpectSuccess: true}, result: newResult("> Task :a FAILED\n", 0), wantError: true},
		{name: "expected failure", inv: Invocation{}, result: newResult("> Task :a FAILED\n", 1)},
		{name: "expected failure, succeeded", inv: Invocation{}, result: newResult("> Task :a SUCCESS\n", 0), wantError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := check(tc.inv, tc.result)
			if !tc.wantError {
				assert.NoError(t, err)
				return
			}
			var invErr *InvocationError
			require.ErrorAs(t, err, &invErr)
			assert.Equal(t, tc.inv.ExpectSuccess, invErr.Expected)
		})
	}
}
