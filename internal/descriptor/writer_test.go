package descriptor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/lintgrid/internal/config"
)

func TestRenderSettings(t *testing.T) {
	out := string(RenderSettings(&config.Settings{
		RootModule:   "sandbox",
		Include:      []string{"app"},
		Repositories: []string{"local-cache"},
		PluginManagement: &config.PluginManagement{
			ToolchainVersion: "1.3.1",
			Plugins:          map[string]string{"io.lintgrid": "0.4.0"},
		},
		IncludeBuilds: []string{"build-logic"},
	}))

	assert.Contains(t, out, `root_module  = "sandbox"`)
	assert.Contains(t, out, `include      = ["app"]`)
	assert.Contains(t, out, `plugin "io.lintgrid" {`)
	assert.Contains(t, out, `include_build "build-logic" {`)
}

func TestRender_RoundTrip(t *testing.T) {
	settings := &config.Settings{
		RootModule:   "sandbox",
		Include:      []string{"app", "lib:core"},
		Repositories: []string{"local-cache", "central"},
		PluginManagement: &config.PluginManagement{
			ToolchainVersion: "1.3.1",
			Repositories:     []string{"plugin-portal"},
			Plugins:          map[string]string{"io.lintgrid": "0.4.0"},
		},
	}
	module := &config.ModuleDescriptor{
		Plugins:      []*config.PluginRequest{{ID: "io.lintgrid", Version: "0.4.0"}},
		Repositories: []string{"central"},
		Lint: &config.LintSettings{
			Sources:         []string{"src", "scripts"},
			Extensions:      []string{".kt"},
			DisabledRules:   []string{"no-tab-indent"},
			BundledEngine:   false,
			WorkerClasspath: []string{"io.lintgrid:rules-standard:1.3.1"},
		},
	}

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, SettingsFile), RenderSettings(settings), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app", ModuleFile), RenderModule(module), 0o644))

	model, err := load(t, root)
	require.NoError(t, err)

	if diff := cmp.Diff(settings, model.Settings); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
	got := model.Modules[":app"]
	assert.Equal(t, module.Plugins, got.Plugins)
	assert.Equal(t, module.Repositories, got.Repositories)
	if diff := cmp.Diff(module.Lint, got.Lint); diff != "" {
		t.Errorf("lint mismatch (-want +got):\n%s", diff)
	}
}
