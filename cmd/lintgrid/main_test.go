package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/specialistvlad/lintgrid/internal/cli"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"lintgrid": cli.Main,
	}))
}

func TestScript(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(e *testscript.Env) error {
			if v := os.Getenv("LINTGRID_TEST_LOGS"); v != "" {
				e.Vars = append(e.Vars, "LINTGRID_TEST_LOGS="+v)
			}
			return nil
		},
		// To refresh expectations, re-run with LINTGRID_UPDATE=y:
		//   LINTGRID_UPDATE=y go test ./cmd/lintgrid -run TestScript/lint_failure
		UpdateScripts: os.Getenv("LINTGRID_UPDATE") != "",
	})
}
