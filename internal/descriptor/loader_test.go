package descriptor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/lintgrid/internal/buildinfo"
	"github.com/specialistvlad/lintgrid/internal/config"
	"github.com/specialistvlad/lintgrid/internal/ctxlog"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func load(t *testing.T, dir string) (*config.Model, error) {
	t.Helper()
	return NewLoader().Load(ctxlog.Discard(context.Background()), dir)
}

func TestLoad_FullWorkspace(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"settings.hcl": `
root_module  = "sandbox"
include      = ["app", "lib:core"]
repositories = ["local-cache", "central"]

plugin_management {
  toolchain_version = lintgrid.toolchain_version
  repositories      = ["plugin-portal"]
  plugin "io.lintgrid" {
    version = "0.4.0"
  }
}

include_build "build-logic" {}
`,
		"build.hcl": `
plugin "io.lintgrid" {
  version = lintgrid.plugin_version
}
`,
		"app/build.hcl": `
plugin "io.lintgrid" {}
repositories = ["central"]
lint {
  disabled_rules   = ["final-newline"]
  ignore_failures  = true
  worker_classpath = ["com.example:extra-rules:1.0.0"]
}
`,
		"build-logic/settings.hcl": `root_module = "build-logic"`,
	})

	model, err := load(t, root)
	require.NoError(t, err)

	assert.Equal(t, root, model.Dir)
	assert.Equal(t, "sandbox", model.Settings.RootModule)
	assert.Equal(t, []string{"app", "lib:core"}, model.Settings.Include)
	assert.Equal(t, buildinfo.ToolchainVersion, model.Settings.PluginManagement.ToolchainVersion)
	v, ok := model.Settings.PluginVersion("io.lintgrid")
	require.True(t, ok)
	assert.Equal(t, "0.4.0", v)
	assert.Equal(t, []string{"build-logic"}, model.Settings.IncludeBuilds)

	require.Len(t, model.Modules, 4)
	for _, path := range []string{":", ":app", ":lib", ":lib:core"} {
		require.Contains(t, model.Modules, path)
	}

	rootPlugin, ok := model.Modules[":"].Plugin("io.lintgrid")
	require.True(t, ok)
	assert.Equal(t, buildinfo.PluginVersion, rootPlugin.Version)
	assert.Nil(t, model.Modules[":"].Lint)

	app := model.Modules[":app"]
	assert.Equal(t, filepath.Join(root, "app"), app.Dir)
	want := &config.LintSettings{
		Sources:         []string{"src"},
		Extensions:      []string{".kt", ".kts"},
		DisabledRules:   []string{"final-newline"},
		IgnoreFailures:  true,
		BundledEngine:   true,
		WorkerClasspath: []string{"com.example:extra-rules:1.0.0"},
	}
	if diff := cmp.Diff(want, app.Lint); diff != "" {
		t.Errorf("lint settings mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, model.Modules[":lib:core"].Plugins)
	assert.Equal(t, filepath.Join(root, "lib", "core"), model.Modules[":lib:core"].Dir)

	require.Len(t, model.Includes, 1)
	assert.Equal(t, "build-logic", model.Includes[0].Settings.RootModule)
	assert.Equal(t, filepath.Join(root, "build-logic"), model.Includes[0].Dir)
}

func TestLoad_NoSettingsIsSingleModuleBuild(t *testing.T) {
	root := writeFiles(t, map[string]string{"build.hcl": `plugin "io.lintgrid" {}`})

	model, err := load(t, root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), model.Settings.RootModule)
	assert.Len(t, model.Modules, 1)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"settings.hcl": `include = [`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown attribute",
			files:   map[string]string{"settings.hcl": `colour = "blue"`},
			wantErr: "failed to decode",
		},
		{
			name:    "unknown repository",
			files:   map[string]string{"build.hcl": `repositories = ["jcenter"]`},
			wantErr: `unknown repository "jcenter"`,
		},
		{
			name:    "unknown plugin management repository",
			files:   map[string]string{"settings.hcl": "plugin_management {\n  repositories = [\"nexus\"]\n}\n"},
			wantErr: `unknown repository "nexus"`,
		},
		{
			name:    "empty include segment",
			files:   map[string]string{"settings.hcl": `include = ["lib::core"]`},
			wantErr: "invalid module path",
		},
		{
			name:    "plugin applied twice",
			files:   map[string]string{"build.hcl": "plugin \"io.lintgrid\" {}\nplugin \"io.lintgrid\" {}\n"},
			wantErr: "applied twice",
		},
		{
			name:    "wrong type",
			files:   map[string]string{"build.hcl": "lint {\n  ignore_failures = \"maybe\"\n}\n"},
			wantErr: "failed to decode",
		},
		{
			name:    "self include",
			files:   map[string]string{"settings.hcl": `include_build "." {}`},
			wantErr: "includes itself",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, writeFiles(t, tc.files))
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
			assert.True(t, config.IsConfigurationError(err))
		})
	}
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := load(t, filepath.Join(t.TempDir(), "missing"))
	assert.True(t, config.IsConfigurationError(err))
}
