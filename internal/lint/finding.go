package lint

import (
	"cmp"
	"fmt"
	"slices"
)

// Finding is a single rule violation.
type Finding struct {
	// File is relative to the request root, slash separated.
	File    string `json:"file"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%d: %s (%s)", f.File, f.Line, f.Col, f.Message, f.Rule)
}

// Report is the result of analyzing one request.
type Report struct {
	Findings []Finding `json:"findings"`
	// Files is the number of files analyzed.
	Files int `json:"files"`
	// Rules lists the ids of the rules that ran.
	Rules []string `json:"rules"`
}

// Failed reports whether any finding was recorded.
func (r *Report) Failed() bool { return r != nil && len(r.Findings) > 0 }

func sortFindings(fs []Finding) {
	slices.SortFunc(fs, func(a, b Finding) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Col, b.Col),
			cmp.Compare(a.Rule, b.Rule),
		)
	})
}
