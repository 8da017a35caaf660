package descriptor

// settingsFile mirrors the top level of settings.hcl.
type settingsFile struct {
	RootModule       *string                `hcl:"root_module,optional"`
	Include          []string               `hcl:"include,optional"`
	Repositories     []string               `hcl:"repositories,optional"`
	PluginManagement *pluginManagementBlock `hcl:"plugin_management,block"`
	IncludeBuilds    []*includeBuildBlock   `hcl:"include_build,block"`
}

type pluginManagementBlock struct {
	ToolchainVersion *string        `hcl:"toolchain_version,optional"`
	Repositories     []string       `hcl:"repositories,optional"`
	Plugins          []*pluginBlock `hcl:"plugin,block"`
}

type pluginBlock struct {
	ID      string  `hcl:"id,label"`
	Version *string `hcl:"version,optional"`
}

type includeBuildBlock struct {
	Dir string `hcl:"dir,label"`
}

// moduleFile mirrors the top level of build.hcl.
type moduleFile struct {
	Plugins      []*pluginBlock `hcl:"plugin,block"`
	Repositories []string       `hcl:"repositories,optional"`
	Lint         *lintBlock     `hcl:"lint,block"`
}

type lintBlock struct {
	Sources         []string `hcl:"sources,optional"`
	Extensions      []string `hcl:"extensions,optional"`
	DisabledRules   []string `hcl:"disabled_rules,optional"`
	IgnoreFailures  *bool    `hcl:"ignore_failures,optional"`
	BundledEngine   *bool    `hcl:"bundled_engine,optional"`
	WorkerClasspath []string `hcl:"worker_classpath,optional"`
}
