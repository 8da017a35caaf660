package descriptor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/lintgrid/internal/config"
	"github.com/specialistvlad/lintgrid/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL descriptor loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load reads the build rooted at dir and every build it includes.
func (l *Loader) Load(ctx context.Context, dir string) (*config.Model, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving build directory %s: %w", dir, err)
	}
	return l.load(ctx, abs, nil)
}

func (l *Loader) load(ctx context.Context, dir string, stack []string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx).With("build_dir", dir)
	logger.Debug("Descriptor loading started.")

	if slices.Contains(stack, dir) {
		return nil, config.Errorf("descriptor.includeBuild", "build %s includes itself", dir)
	}
	stack = append(stack, dir)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, config.Wrap("descriptor.load", err)
	}
	if !info.IsDir() {
		return nil, config.Errorf("descriptor.load", "%s is not a directory", dir)
	}

	parser := hclparse.NewParser()
	settings, err := l.loadSettings(parser, dir)
	if err != nil {
		return nil, err
	}

	paths, err := settings.ModulePaths()
	if err != nil {
		return nil, err
	}

	model := &config.Model{
		Dir:      dir,
		Settings: settings,
		Modules:  make(map[string]*config.ModuleDescriptor, len(paths)),
	}
	for _, path := range paths {
		m, err := l.loadModule(parser, dir, path)
		if err != nil {
			return nil, err
		}
		model.Modules[path] = m
	}
	logger.Debug("Module descriptors loaded.", "modules", len(model.Modules))

	for _, inc := range settings.IncludeBuilds {
		incDir := inc
		if !filepath.IsAbs(incDir) {
			incDir = filepath.Join(dir, inc)
		}
		sub, err := l.load(ctx, filepath.Clean(incDir), stack)
		if err != nil {
			return nil, fmt.Errorf("included build %q: %w", inc, err)
		}
		model.Includes = append(model.Includes, sub)
	}

	logger.Debug("Descriptor loading complete.", "root_module", settings.RootModule, "includes", len(model.Includes))
	return model, nil
}

func (l *Loader) loadSettings(parser *hclparse.Parser, dir string) (*config.Settings, error) {
	settings := &config.Settings{RootModule: filepath.Base(dir)}

	path := filepath.Join(dir, SettingsFile)
	body, err := parseFile(parser, path)
	if err != nil || body == nil {
		return settings, err
	}

	var raw settingsFile
	if diags := gohcl.DecodeBody(body, EvalContext(), &raw); diags.HasErrors() {
		return nil, config.Wrap("descriptor.settings", fmt.Errorf("failed to decode %s: %w", path, diags))
	}

	if raw.RootModule != nil {
		if *raw.RootModule == "" {
			return nil, config.Errorf("descriptor.settings", "%s: root_module must not be empty", path)
		}
		settings.RootModule = *raw.RootModule
	}
	settings.Include = raw.Include
	settings.Repositories = raw.Repositories
	if err := checkRepositories(path, settings.Repositories); err != nil {
		return nil, err
	}

	if pm := raw.PluginManagement; pm != nil {
		settings.PluginManagement = &config.PluginManagement{
			Repositories: pm.Repositories,
			Plugins:      make(map[string]string, len(pm.Plugins)),
		}
		if pm.ToolchainVersion != nil {
			settings.PluginManagement.ToolchainVersion = *pm.ToolchainVersion
		}
		if err := checkRepositories(path, pm.Repositories); err != nil {
			return nil, err
		}
		for _, p := range pm.Plugins {
			if _, dup := settings.PluginManagement.Plugins[p.ID]; dup {
				return nil, config.Errorf("descriptor.settings", "%s: plugin %q is declared twice", path, p.ID)
			}
			settings.PluginManagement.Plugins[p.ID] = deref(p.Version)
		}
	}

	for _, b := range raw.IncludeBuilds {
		settings.IncludeBuilds = append(settings.IncludeBuilds, b.Dir)
	}
	return settings, nil
}

func (l *Loader) loadModule(parser *hclparse.Parser, buildDir, modulePath string) (*config.ModuleDescriptor, error) {
	dir := config.ModuleDir(buildDir, modulePath)
	m := &config.ModuleDescriptor{Path: modulePath, Dir: dir}

	path := filepath.Join(dir, ModuleFile)
	body, err := parseFile(parser, path)
	if err != nil || body == nil {
		return m, err
	}

	var raw moduleFile
	if diags := gohcl.DecodeBody(body, EvalContext(), &raw); diags.HasErrors() {
		return nil, config.Wrap("descriptor.module", fmt.Errorf("failed to decode %s: %w", path, diags))
	}

	for _, p := range raw.Plugins {
		if _, dup := m.Plugin(p.ID); dup {
			return nil, config.Errorf("descriptor.module", "%s: plugin %q is applied twice", path, p.ID)
		}
		m.Plugins = append(m.Plugins, &config.PluginRequest{ID: p.ID, Version: deref(p.Version)})
	}
	m.Repositories = raw.Repositories
	if err := checkRepositories(path, m.Repositories); err != nil {
		return nil, err
	}

	if raw.Lint != nil {
		m.Lint = translateLint(raw.Lint)
	}
	return m, nil
}

// translateLint overlays the lint block on the defaults.
func translateLint(b *lintBlock) *config.LintSettings {
	ls := config.DefaultLintSettings()
	if b.Sources != nil {
		ls.Sources = b.Sources
	}
	if b.Extensions != nil {
		ls.Extensions = b.Extensions
	}
	ls.DisabledRules = b.DisabledRules
	if b.IgnoreFailures != nil {
		ls.IgnoreFailures = *b.IgnoreFailures
	}
	if b.BundledEngine != nil {
		ls.BundledEngine = *b.BundledEngine
	}
	ls.WorkerClasspath = b.WorkerClasspath
	return ls
}

// parseFile returns the body of the HCL file at path, or nil when the file
// does not exist.
func parseFile(parser *hclparse.Parser, path string) (hcl.Body, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, config.Wrap("descriptor.parse", err)
	}
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, config.Wrap("descriptor.parse", fmt.Errorf("failed to parse HCL file %s: %w", path, diags))
	}
	return f.Body, nil
}

func checkRepositories(path string, repos []string) error {
	for _, r := range repos {
		if !slices.Contains(config.KnownRepositories, r) {
			return config.Errorf("descriptor.repositories", "%s: unknown repository %q (known: %v)", path, r, config.KnownRepositories)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
