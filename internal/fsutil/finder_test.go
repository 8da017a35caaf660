package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x\n"), 0o644))
	}
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"b/Main.kt",
		"a/Util.kt",
		"a/build.gradle.kts",
		"a/README.md",
		"a/build/Generated.kt",
	)

	files, err := FindFilesByExtension(root, ".kt", ".kts")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a/Util.kt"),
		filepath.Join(root, "a/build.gradle.kts"),
		filepath.Join(root, "b/Main.kt"),
	}, files)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	files, err := FindFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".kt")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindFilesByExtension_PanicsOnEmptyExtension(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir()) })
}

func TestFindSources(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, "src/main/A.kt", "src/test/B.kt", "other/C.kt")

	files, err := FindSources(base, []string{"src", "src/main", "missing"}, []string{".kt"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(base, "src/main/A.kt"),
		filepath.Join(base, "src/test/B.kt"),
	}, files)
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build", "lintgrid", "state")
	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
