package sandbox

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/specialistvlad/lintgrid/internal/workgraph"
)

// UnitResult is the outcome of one executed unit.
type UnitResult struct {
	Path    string
	Outcome workgraph.Outcome
}

// Result is what a build invocation produced.
type Result struct {
	// Output is the combined stdout and stderr of the build.
	Output   string
	ExitCode int
	// Succeeded is true when the process exited cleanly and no unit failed.
	Succeeded bool
	// Units are in execution order.
	Units []UnitResult
}

// Outcome returns the outcome of the unit at path, if it executed.
func (r *Result) Outcome(path string) (workgraph.Outcome, bool) {
	for _, u := range r.Units {
		if u.Path == path {
			return u.Outcome, true
		}
	}
	return "", false
}

// Paths returns the paths of the units that ended with outcome.
func (r *Result) Paths(outcome workgraph.Outcome) []string {
	var paths []string
	for _, u := range r.Units {
		if u.Outcome == outcome {
			paths = append(paths, u.Path)
		}
	}
	return paths
}

var taskLine = regexp.MustCompile(`^> Task (:\S*) (\S+)$`)

// parseUnits reads the outcome lines of a build's output.
func parseUnits(output string) []UnitResult {
	var units []UnitResult
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		m := taskLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		o, ok := workgraph.ParseOutcome(m[2])
		if !ok {
			continue
		}
		units = append(units, UnitResult{Path: m[1], Outcome: o})
	}
	return units
}

func newResult(output string, exitCode int) *Result {
	r := &Result{
		Output:   output,
		ExitCode: exitCode,
		Units:    parseUnits(output),
	}
	r.Succeeded = exitCode == 0 && len(r.Paths(workgraph.OutcomeFailed)) == 0
	return r
}
