package main

import (
	"os"

	"github.com/specialistvlad/lintgrid/internal/cli"
)

// main is the entrypoint for the lintgrid application.
func main() {
	os.Exit(cli.Main())
}
