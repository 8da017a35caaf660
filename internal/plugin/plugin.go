package plugin

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/specialistvlad/lintgrid/internal/buildinfo"
	"github.com/specialistvlad/lintgrid/internal/classpath"
	"github.com/specialistvlad/lintgrid/internal/config"
	"github.com/specialistvlad/lintgrid/internal/ctxlog"
	"github.com/specialistvlad/lintgrid/internal/lint"
	"github.com/specialistvlad/lintgrid/internal/workgraph"
	"github.com/specialistvlad/lintgrid/internal/workspace"
)

// Options control how the plugin's units execute.
type Options struct {
	// Isolated runs analysis in a separate worker process.
	Isolated bool
	// WorkerBinary is the executable started for isolated analysis. Empty
	// means the running executable.
	WorkerBinary string
	// Out receives findings. Nil discards them.
	Out io.Writer
	// WorkerStderr receives the isolated worker's diagnostics.
	WorkerStderr io.Writer
}

// Plugin registers the lint units on the nodes it is applied to. One Plugin
// serves a whole configuration session.
type Plugin struct {
	graph     *workgraph.Graph
	assembler *classpath.Assembler
	opts      Options

	// mu guards reports and out; unit actions run concurrently.
	mu      sync.Mutex
	reports map[string]*lint.Report
	applied int
}

// New returns a plugin registering into g and feeding a.
func New(g *workgraph.Graph, a *classpath.Assembler, opts Options) *Plugin {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Plugin{
		graph:     g,
		assembler: a,
		opts:      opts,
		reports:   make(map[string]*lint.Report),
	}
}

// Applied reports how many modules the plugin was applied to.
func (p *Plugin) Applied() int { return p.applied }

// Resolve reports whether desc applies the plugin, validating every plugin
// request of the module against what this binary provides.
func Resolve(desc *config.ModuleDescriptor, settings *config.Settings) (bool, error) {
	if desc == nil {
		return false, nil
	}
	applies := false
	for _, req := range desc.Plugins {
		if req.ID != ID {
			return false, config.Errorf("plugin.resolve", "module %s applies unknown plugin %q", desc.Path, req.ID)
		}
		version := req.Version
		if version == "" {
			version, _ = settings.PluginVersion(req.ID)
		}
		if version != "" && version != buildinfo.PluginVersion {
			return false, config.Errorf("plugin.resolve", "module %s requests %s version %s, but this build provides %s",
				desc.Path, req.ID, version, buildinfo.PluginVersion)
		}
		applies = true
	}
	if applies && settings != nil && settings.PluginManagement != nil {
		tv := settings.PluginManagement.ToolchainVersion
		if tv != "" && tv != buildinfo.ToolchainVersion {
			return false, config.Errorf("plugin.resolve", "toolchain version %s is not supported, this build provides %s",
				tv, buildinfo.ToolchainVersion)
		}
	}
	return applies, nil
}

// ApplyRoot registers the aggregate units on the real root. It must run
// before any module is configured: lintReport picks up lint units through a
// live query, including those registered later.
func (p *Plugin) ApplyRoot(ctx context.Context, root *workspace.Node) error {
	logger := ctxlog.FromContext(ctx)

	lints, err := p.graph.RealRootMatching(root, LintUnit, KindLint)
	if err != nil {
		return err
	}

	_, err = p.graph.RegisterOnce(root, ReportUnit, KindReport, func(u *workgraph.Unit) {
		u.Description = "Aggregates the findings of every lint unit in the composition."
		u.Group = group
		u.Action = p.reportAction(lints)
		u.DependOn(lints)
	})
	if err != nil {
		return err
	}

	_, err = p.graph.RegisterOnce(root, ConstantsUnit, KindGenerate, func(u *workgraph.Unit) {
		u.Description = "Writes the generated constants for the isolated worker classpath."
		u.Group = "build setup"
		u.Action = p.constantsAction(root)
	})
	if err != nil {
		return err
	}

	logger.Debug("Lint plugin applied to real root.", "node", root.ID())
	return nil
}

// Apply registers format, lint and check on node and adds the module's
// runtime classpath entries to the assembler. Applying twice reconfigures
// the same units.
func (p *Plugin) Apply(ctx context.Context, node *workspace.Node, desc *config.ModuleDescriptor) error {
	logger := ctxlog.FromContext(ctx).With("node", node.ID())

	settings := config.DefaultLintSettings()
	if desc != nil && desc.Lint != nil {
		settings = desc.Lint
	}
	rules, err := lint.Select(lint.Standard(), settings.DisabledRules)
	if err != nil {
		return config.Wrap("plugin.apply", fmt.Errorf("module %s: %w", node.ID(), err))
	}
	for _, ext := range settings.Extensions {
		if ext == "" {
			return config.Errorf("plugin.apply", "module %s: source extensions must not be empty", node.ID())
		}
	}
	if len(settings.Extensions) == 0 {
		return config.Errorf("plugin.apply", "module %s: at least one source extension is required", node.ID())
	}

	if err := p.registerClasspath(settings); err != nil {
		return fmt.Errorf("module %s: %w", node.ID(), err)
	}

	format, err := p.graph.RegisterOnce(node, FormatUnit, KindFormat, func(u *workgraph.Unit) {
		u.Description = "Rewrites sources to fix violations the rules can fix."
		u.Group = "formatting"
		u.Action = p.formatAction(node, settings, rules)
	})
	if err != nil {
		return err
	}

	lintUnit, err := p.graph.RegisterOnce(node, LintUnit, KindLint, func(u *workgraph.Unit) {
		u.Description = "Analyzes sources with the configured rules."
		u.Group = group
		u.Action = p.lintAction(node, settings)
		u.MustRunAfter(format)
	})
	if err != nil {
		return err
	}

	_, err = p.graph.RegisterOnce(node, CheckUnit, KindLifecycle, func(u *workgraph.Unit) {
		u.Description = "Runs all verification units of this module."
		u.Group = group
		u.DependOn(lintUnit)
	})
	if err != nil {
		return err
	}

	p.applied++
	logger.Debug("Lint plugin applied.", "rules", len(rules), "sources", settings.Sources)
	return nil
}

func (p *Plugin) registerClasspath(settings *config.LintSettings) error {
	var entries []classpath.Entry
	if settings.BundledEngine {
		entries = append(entries, BundledClasspath()...)
	}
	extra, err := classpath.ParseEntries(settings.WorkerClasspath)
	if err != nil {
		return config.Wrap("plugin.classpath", err)
	}
	return p.assembler.RegisterAll(append(entries, extra...)...)
}

// BundledClasspath is the engine and standard rule set of this toolchain.
func BundledClasspath() []classpath.Entry {
	return []classpath.Entry{
		{Group: buildinfo.PluginID, Name: "engine", Version: buildinfo.ToolchainVersion},
		{Group: buildinfo.PluginID, Name: "rules-standard", Version: buildinfo.ToolchainVersion},
	}
}

// runtimeClasspath returns the frozen classpath. Units only execute after
// the configuration phase, so an unfrozen assembler here is a sequencing bug.
func (p *Plugin) runtimeClasspath() ([]classpath.Entry, error) {
	if !p.assembler.Frozen() {
		return nil, ErrNotFrozen
	}
	return p.assembler.Entries(), nil
}

func (p *Plugin) engine(entries []classpath.Entry) (lint.Engine, error) {
	if p.opts.Isolated {
		return &lint.IsolatedWorker{
			Binary:    p.opts.WorkerBinary,
			Classpath: entries,
			Stderr:    p.opts.WorkerStderr,
		}, nil
	}
	rules, err := lint.RulesFromClasspath(entries)
	if err != nil {
		return nil, err
	}
	return &lint.InProcess{Rules: rules}, nil
}

// Report returns the report recorded by the lint unit at path.
func (p *Plugin) Report(path string) (*lint.Report, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.reports[path]
	return r, ok
}

func (p *Plugin) record(path string, r *lint.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports[path] = r
}

func (p *Plugin) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.opts.Out, format, args...)
}
