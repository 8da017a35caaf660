package sandbox

import (
	"fmt"
	"strings"
)

// InvocationError reports a build whose result did not match the
// expectation it was invoked with.
type InvocationError struct {
	Tasks []string
	// Expected is true when the invocation was expected to succeed.
	Expected bool
	Reason   string
	Output   string
}

func (e *InvocationError) Error() string {
	want := "failure"
	if e.Expected {
		want = "success"
	}
	return fmt.Sprintf("build %s: expected %s, %s\n--- output ---\n%s",
		strings.Join(e.Tasks, " "), want, e.Reason, e.Output)
}

// StagingError reports a staged file that could not be written.
type StagingError struct {
	Path string
	Err  error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("staging %s: %v", e.Path, e.Err)
}

func (e *StagingError) Unwrap() error { return e.Err }
