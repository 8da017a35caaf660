package buildinfo

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"regexp"
	"text/template"

	"github.com/specialistvlad/lintgrid/internal/classpath"
)

var identRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Artifact describes the generated constants file.
type Artifact struct {
	Package          string
	PluginID         string
	PluginVersion    string
	ToolchainVersion string
	// Classpath must be the frozen entry list.
	Classpath []classpath.Entry
}

// Current returns the artifact describing this binary, for the given frozen
// classpath.
func Current(entries []classpath.Entry) Artifact {
	return Artifact{
		Package:          "buildinfo",
		PluginID:         PluginID,
		PluginVersion:    PluginVersion,
		ToolchainVersion: ToolchainVersion,
		Classpath:        entries,
	}
}

var artifactTemplate = template.Must(template.New("constants").Parse(`// Code generated by lintgrid constants; DO NOT EDIT.

package {{ .Package }}

const (
	PluginID = {{ printf "%q" .PluginID }}
	PluginVersion = {{ printf "%q" .PluginVersion }}
	ToolchainVersion = {{ printf "%q" .ToolchainVersion }}
	Classpath = {{ .Classpath }}
)
`))

// Render produces gofmt-ed Go source for the artifact.
func (a Artifact) Render() ([]byte, error) {
	if !identRegex.MatchString(a.Package) {
		return nil, fmt.Errorf("invalid package name %q", a.Package)
	}
	if len(a.Classpath) == 0 {
		return nil, fmt.Errorf("constants artifact requires a non-empty classpath")
	}

	var buf bytes.Buffer
	err := artifactTemplate.Execute(&buf, map[string]string{
		"Package":          a.Package,
		"PluginID":         a.PluginID,
		"PluginVersion":    a.PluginVersion,
		"ToolchainVersion": a.ToolchainVersion,
		"Classpath":        classpath.Render(a.Classpath),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering constants: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting constants: %w", err)
	}
	return src, nil
}

// Write renders the artifact to path, creating parent directories.
func (a Artifact) Write(path string) error {
	src, err := a.Render()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
