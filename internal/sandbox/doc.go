// Package sandbox materializes throwaway workspaces on disk and drives real,
// out-of-process lintgrid builds against them, so tests can assert on the
// outcome of every executed unit.
//
// Files are staged in memory and only written when the workspace is
// materialized, which Invoke does before starting the build. Test binaries
// usually expose the lintgrid command through testscript.RunMain in their
// TestMain; a prebuilt binary can be selected with $LINTGRID_BIN.
package sandbox
