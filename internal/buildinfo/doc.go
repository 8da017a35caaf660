// Package buildinfo holds the generated constants the isolated worker is
// built with, and the generator that writes them.
//
// constants.go is produced by `lintgrid constants`; edit the generator, not
// the output.
package buildinfo

//go:generate go run ../../cmd/lintgrid constants --out constants.go
