// Package cli is the lintgrid command line: the kong command tree, the
// mapping of flags onto app.Config, and process exit codes. Outcome lines
// and summaries go to stdout, logs to stderr.
package cli
