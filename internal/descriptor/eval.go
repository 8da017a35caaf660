package descriptor

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/lintgrid/internal/buildinfo"
)

// EvalContext exposes the versions this binary provides, so descriptors can
// write `version = lintgrid.plugin_version` instead of pinning a literal.
func EvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"lintgrid": cty.ObjectVal(map[string]cty.Value{
				"plugin_id":         cty.StringVal(buildinfo.PluginID),
				"plugin_version":    cty.StringVal(buildinfo.PluginVersion),
				"toolchain_version": cty.StringVal(buildinfo.ToolchainVersion),
			}),
		},
	}
}
