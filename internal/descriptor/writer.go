package descriptor

import (
	"slices"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/lintgrid/internal/config"
)

// RenderSettings renders s as a settings.hcl document.
func RenderSettings(s *config.Settings) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	if s.RootModule != "" {
		body.SetAttributeValue("root_module", cty.StringVal(s.RootModule))
	}
	setStrings(body, "include", s.Include)
	setStrings(body, "repositories", s.Repositories)

	if pm := s.PluginManagement; pm != nil {
		body.AppendNewline()
		pmBody := body.AppendNewBlock("plugin_management", nil).Body()
		if pm.ToolchainVersion != "" {
			pmBody.SetAttributeValue("toolchain_version", cty.StringVal(pm.ToolchainVersion))
		}
		setStrings(pmBody, "repositories", pm.Repositories)

		ids := make([]string, 0, len(pm.Plugins))
		for id := range pm.Plugins {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			writePlugin(pmBody, id, pm.Plugins[id])
		}
	}

	for _, dir := range s.IncludeBuilds {
		body.AppendNewline()
		body.AppendNewBlock("include_build", []string{dir})
	}
	return hclwrite.Format(f.Bytes())
}

// RenderModule renders m as a build.hcl document. Path and Dir are not part
// of the document.
func RenderModule(m *config.ModuleDescriptor) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for _, p := range m.Plugins {
		writePlugin(body, p.ID, p.Version)
	}
	if len(m.Repositories) > 0 {
		body.AppendNewline()
		setStrings(body, "repositories", m.Repositories)
	}

	if ls := m.Lint; ls != nil {
		body.AppendNewline()
		lb := body.AppendNewBlock("lint", nil).Body()
		setStrings(lb, "sources", ls.Sources)
		setStrings(lb, "extensions", ls.Extensions)
		setStrings(lb, "disabled_rules", ls.DisabledRules)
		lb.SetAttributeValue("ignore_failures", cty.BoolVal(ls.IgnoreFailures))
		lb.SetAttributeValue("bundled_engine", cty.BoolVal(ls.BundledEngine))
		setStrings(lb, "worker_classpath", ls.WorkerClasspath)
	}
	return hclwrite.Format(f.Bytes())
}

func writePlugin(body *hclwrite.Body, id, version string) {
	pb := body.AppendNewBlock("plugin", []string{id}).Body()
	if version != "" {
		pb.SetAttributeValue("version", cty.StringVal(version))
	}
}

func setStrings(body *hclwrite.Body, name string, values []string) {
	if len(values) == 0 {
		return
	}
	vals := make([]cty.Value, len(values))
	for i, v := range values {
		vals[i] = cty.StringVal(v)
	}
	body.SetAttributeValue(name, cty.ListVal(vals))
}
