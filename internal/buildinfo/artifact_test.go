package buildinfo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/lintgrid/internal/classpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifact_RenderMatchesCheckedInConstants(t *testing.T) {
	want, err := os.ReadFile("constants.go")
	require.NoError(t, err)

	entries := []classpath.Entry{
		classpath.MustParseEntry("io.lintgrid:engine:1.3.1"),
		classpath.MustParseEntry("io.lintgrid:rules-standard:1.3.1"),
	}
	got, err := Current(entries).Render()
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestArtifact_ClasspathIsConcatenatedLiteral(t *testing.T) {
	assert.Equal(t, `"io.lintgrid:engine:1.3.1","io.lintgrid:rules-standard:1.3.1"`, Classpath)
}

func TestArtifact_RenderErrors(t *testing.T) {
	a := Current(nil)
	_, err := a.Render()
	assert.ErrorContains(t, err, "non-empty classpath")

	a = Current([]classpath.Entry{classpath.MustParseEntry("g:a:1")})
	a.Package = "Bad-Name"
	_, err = a.Render()
	assert.ErrorContains(t, err, "invalid package name")
}

func TestArtifact_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "constants.go")
	a := Current([]classpath.Entry{classpath.MustParseEntry("g:a:1")})
	a.Package = "workerconst"
	require.NoError(t, a.Write(path))

	src, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(src), "// Code generated by lintgrid constants; DO NOT EDIT."))
	assert.Contains(t, string(src), "package workerconst")
	assert.Contains(t, string(src), `Classpath        = "\"g:a:1\""`)
}
