package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/lintgrid/internal/config"
	"github.com/specialistvlad/lintgrid/internal/executor"
	"github.com/specialistvlad/lintgrid/internal/workgraph"
)

func (a *App) writeSummary(result *executor.Result, err error) {
	w := a.outW
	if err == nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "BUILD SUCCESSFUL")
		writeCounts(w, result)
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "* What went wrong:")
	for _, line := range whatWentWrong(err) {
		fmt.Fprintln(w, line)
	}
	if a.config.Stacktrace {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "* Exception is:")
		writeChain(w, err)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "BUILD FAILED")
	if result != nil {
		writeCounts(w, result)
	}
}

// whatWentWrong describes each failure in a headline plus cause line.
func whatWentWrong(err error) []string {
	var lines []string
	walk(err, func(e error) bool {
		ue, ok := e.(*executor.UnitError)
		if ok {
			lines = append(lines, fmt.Sprintf("Execution failed for unit '%s'.", ue.Path), "> "+ue.Err.Error())
		}
		return !ok
	})
	if len(lines) > 0 {
		return lines
	}

	switch {
	case config.IsConfigurationError(err):
		return []string{"A problem occurred configuring the build.", "> " + err.Error()}
	case errors.Is(err, workgraph.ErrUnknownUnit), errors.Is(err, workgraph.ErrInvalidName):
		return []string{"A problem occurred selecting tasks.", "> " + err.Error()}
	default:
		return []string{err.Error()}
	}
}

// walk visits err and everything it wraps, depth first. fn returns false to
// stop descending below an error.
func walk(err error, fn func(error) bool) {
	if err == nil || !fn(err) {
		return
	}
	switch e := err.(type) {
	case interface{ Unwrap() []error }:
		for _, c := range e.Unwrap() {
			walk(c, fn)
		}
	case interface{ Unwrap() error }:
		walk(e.Unwrap(), fn)
	}
}

// writeChain prints err followed by every error it wraps.
func writeChain(w io.Writer, err error) {
	fmt.Fprintln(w, err.Error())
	top := true
	walk(err, func(e error) bool {
		if !top {
			fmt.Fprintf(w, "Caused by: %s\n", e)
		}
		top = false
		return true
	})
}

func writeCounts(w io.Writer, result *executor.Result) {
	if result == nil {
		return
	}
	counts := map[workgraph.Outcome]int{}
	for _, u := range result.Units {
		counts[u.Outcome]++
	}
	fmt.Fprintf(w, "%d actionable unit(s): %d executed, %d up-to-date, %d skipped, %d failed\n",
		len(result.Units),
		counts[workgraph.OutcomeSuccess],
		counts[workgraph.OutcomeUpToDate],
		counts[workgraph.OutcomeSkipped],
		counts[workgraph.OutcomeFailed],
	)
}
