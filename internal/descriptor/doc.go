// Package descriptor is the HCL implementation of config.Loader. It reads
// settings.hcl at the root of a build and an optional build.hcl in every
// module directory, and it can render both back to HCL for generated
// workspaces.
package descriptor

const (
	// SettingsFile is the settings descriptor at the root of every build.
	SettingsFile = "settings.hcl"
	// ModuleFile is the optional per-module descriptor.
	ModuleFile = "build.hcl"
)
