package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/lintgrid/internal/buildinfo"
)

func writeWorkspace(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"settings.hcl":    "root_module = \"cli\"\ninclude = [\"app\"]\n",
		"app/build.hcl":   "plugin \"io.lintgrid\" {}\n",
		"app/src/Main.kt": source,
	}
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Help(t *testing.T) {
	code, out, _ := runCLI(t, "--help")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Usage: lintgrid")
	assert.Contains(t, out, "build")
}

func TestRun_UsageErrors(t *testing.T) {
	testCases := []struct {
		name   string
		args   []string
		stderr string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"publish"}},
		{name: "build without units", args: []string{"build"}},
		{name: "bad log level", args: []string{"--log-level", "loud", "build", "lint"}, stderr: `unknown log level "loud"`},
		{name: "bad inject coordinates", args: []string{"build", "--inject-classpath", "nope", "lint"}, stderr: "nope"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tc.args...)
			assert.Equal(t, ExitUsage, code)
			assert.Contains(t, stderr, "lintgrid: error:")
			if tc.stderr != "" {
				assert.Contains(t, stderr, tc.stderr)
			}
		})
	}
}

func TestRun_BuildSuccess(t *testing.T) {
	dir := writeWorkspace(t, "val x = 1\n")

	code, out, _ := runCLI(t, "build", "--project-dir", dir, "check")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "> Task :app:lint SUCCESS\n")
	assert.Contains(t, out, "BUILD SUCCESSFUL\n")
}

func TestRun_BuildFailure(t *testing.T) {
	dir := writeWorkspace(t, "val x = 1;\n")

	code, out, stderr := runCLI(t, "build", "-p", dir, "lint")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "> Task :app:lint FAILED\n")
	assert.Contains(t, out, "BUILD FAILED\n")
	assert.NotContains(t, stderr, "lintgrid: error:", "the summary is the only report")
}

func TestRun_Tasks(t *testing.T) {
	dir := writeWorkspace(t, "val x = 1\n")

	code, out, _ := runCLI(t, "tasks", "--project-dir", dir)
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "UNIT")
	assert.Contains(t, out, ":app:check")
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "lintgrid plugin "+buildinfo.PluginID+" "+buildinfo.PluginVersion+"\ntoolchain "+buildinfo.ToolchainVersion+"\n", out)
}

func TestRun_Constants(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen", "constants.go")

	code, _, stderr := runCLI(t, "constants", "--out", out)
	require.Equal(t, ExitOK, code, stderr)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("..", "buildinfo", "constants.go"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got), "the checked-in constants are up to date")
}

func TestRun_ConstantsOverrides(t *testing.T) {
	out := filepath.Join(t.TempDir(), "constants.go")

	code, _, stderr := runCLI(t, "constants", "-o", out, "--package", "gen", "--toolchain-version", "2.0.0")
	require.Equal(t, ExitOK, code, stderr)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(got), "package gen\n")
	assert.Contains(t, string(got), `io.lintgrid:rules-standard:2.0.0`)
}

func TestRun_WorkerWithoutClasspath(t *testing.T) {
	code, _, stderr := runCLI(t, "worker")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "classpath")
}
