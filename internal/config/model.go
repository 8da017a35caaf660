package config

import (
	"path/filepath"
	"strings"
)

// Model is the unified, format-agnostic representation of one build: its
// settings, its module descriptors and the builds it includes.
type Model struct {
	// Dir is the absolute root directory of the build.
	Dir      string
	Settings *Settings
	// Modules maps a build-local module path (":" for the root,
	// ":lib:core" for nested modules) to its descriptor. Modules without a
	// descriptor file get an empty descriptor.
	Modules map[string]*ModuleDescriptor
	// Includes are the nested builds, in declaration order.
	Includes []*Model
}

// Settings is the format-agnostic representation of a settings descriptor.
type Settings struct {
	RootModule       string
	Include          []string
	Repositories     []string
	PluginManagement *PluginManagement
	IncludeBuilds    []string
}

// PluginManagement pins the toolchain and plugin versions for a build.
type PluginManagement struct {
	ToolchainVersion string
	Repositories     []string
	// Plugins maps a plugin id to its pinned version.
	Plugins map[string]string
}

// PluginVersion returns the version pinned for id, if any.
func (s *Settings) PluginVersion(id string) (string, bool) {
	if s == nil || s.PluginManagement == nil {
		return "", false
	}
	v, ok := s.PluginManagement.Plugins[id]
	return v, ok
}

// ModuleDescriptor is the format-agnostic representation of a module's
// build descriptor.
type ModuleDescriptor struct {
	Path         string
	Dir          string
	Plugins      []*PluginRequest
	Repositories []string
	Lint         *LintSettings
}

// PluginRequest declares a plugin applied to a module.
type PluginRequest struct {
	ID      string
	Version string
}

// Plugin returns the request for id, if the module applies it.
func (m *ModuleDescriptor) Plugin(id string) (*PluginRequest, bool) {
	if m == nil {
		return nil, false
	}
	for _, p := range m.Plugins {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// LintSettings configures the lint plugin for one module.
type LintSettings struct {
	Sources         []string
	Extensions      []string
	DisabledRules   []string
	IgnoreFailures  bool
	BundledEngine   bool
	WorkerClasspath []string
}

// DefaultLintSettings returns the settings used when a module applies the
// plugin without a lint block.
func DefaultLintSettings() *LintSettings {
	return &LintSettings{
		Sources:       []string{"src"},
		Extensions:    []string{".kt", ".kts"},
		BundledEngine: true,
	}
}

// KnownRepositories are the repository names descriptors may reference.
var KnownRepositories = []string{"local-cache", "central", "plugin-portal"}

// ModulePaths expands Include into build-local module paths in declaration
// order, root first. Every intermediate path is implied, so "lib:core" also
// yields ":lib" before ":lib:core". Leading colons are optional.
func (s *Settings) ModulePaths() ([]string, error) {
	paths := []string{":"}
	seen := map[string]bool{":": true}
	if s == nil {
		return paths, nil
	}
	for _, inc := range s.Include {
		segments := strings.Split(strings.TrimPrefix(inc, ":"), ":")
		path := ""
		for _, seg := range segments {
			if seg == "" {
				return nil, Errorf("settings.include", "invalid module path %q", inc)
			}
			path += ":" + seg
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		}
	}
	return paths, nil
}

// ModuleDir returns the directory of the build-local module path below the
// build directory.
func ModuleDir(buildDir, path string) string {
	if path == ":" {
		return buildDir
	}
	return filepath.Join(append([]string{buildDir}, strings.Split(strings.TrimPrefix(path, ":"), ":")...)...)
}
