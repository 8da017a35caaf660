package plugin

import (
	"github.com/specialistvlad/lintgrid/internal/buildinfo"
	"github.com/specialistvlad/lintgrid/internal/workgraph"
)

// ID is the plugin id descriptors apply.
const ID = buildinfo.PluginID

// Unit names.
const (
	FormatUnit    = "format"
	LintUnit      = "lint"
	CheckUnit     = "check"
	ReportUnit    = "lintReport"
	ConstantsUnit = "workerConstants"
)

// Unit kinds.
const (
	KindFormat    workgraph.Kind = "format"
	KindLint      workgraph.Kind = "lint"
	KindLifecycle workgraph.Kind = "lifecycle"
	KindReport    workgraph.Kind = "report"
	KindGenerate  workgraph.Kind = "generate"
)

const group = "verification"
