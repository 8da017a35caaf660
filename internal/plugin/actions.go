package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/lintgrid/internal/buildinfo"
	"github.com/specialistvlad/lintgrid/internal/config"
	"github.com/specialistvlad/lintgrid/internal/ctxlog"
	"github.com/specialistvlad/lintgrid/internal/fsutil"
	"github.com/specialistvlad/lintgrid/internal/lint"
	"github.com/specialistvlad/lintgrid/internal/workgraph"
	"github.com/specialistvlad/lintgrid/internal/workspace"
)

func (p *Plugin) formatAction(node *workspace.Node, settings *config.LintSettings, rules []lint.Rule) workgraph.Action {
	return func(ctx context.Context, u *workgraph.Unit) (workgraph.Outcome, error) {
		logger := ctxlog.FromContext(ctx)

		files, err := fsutil.FindSources(node.Dir(), settings.Sources, settings.Extensions)
		if err != nil {
			return workgraph.OutcomeFailed, err
		}
		if len(files) == 0 {
			logger.Debug("No sources to format.")
			return workgraph.OutcomeSkipped, nil
		}

		changed, err := lint.Format(ctx, rules, files)
		if err != nil {
			return workgraph.OutcomeFailed, err
		}
		if len(changed) == 0 {
			return workgraph.OutcomeUpToDate, nil
		}
		logger.Info("Formatted sources.", "files", len(changed))
		return workgraph.OutcomeSuccess, nil
	}
}

func (p *Plugin) lintAction(node *workspace.Node, settings *config.LintSettings) workgraph.Action {
	return func(ctx context.Context, u *workgraph.Unit) (workgraph.Outcome, error) {
		logger := ctxlog.FromContext(ctx)

		files, err := fsutil.FindSources(node.Dir(), settings.Sources, settings.Extensions)
		if err != nil {
			return workgraph.OutcomeFailed, err
		}
		if len(files) == 0 {
			logger.Debug("No sources to lint.", "sources", settings.Sources)
			return workgraph.OutcomeSkipped, nil
		}

		entries, err := p.runtimeClasspath()
		if err != nil {
			return workgraph.OutcomeFailed, err
		}

		sum, err := fingerprint(node.Dir(), entries, settings.DisabledRules, files)
		if err != nil {
			return workgraph.OutcomeFailed, err
		}
		state := statePath(node.Dir(), u.Name())
		if prev, err := readState(state); err != nil {
			return workgraph.OutcomeFailed, err
		} else if prev != nil && prev.Fingerprint == sum && (!prev.Report.Failed() || settings.IgnoreFailures) {
			p.record(u.Path(), prev.Report)
			if prev.Report.Failed() {
				p.printFindings(u, prev.Report)
				logger.Warn("Ignoring lint findings.", "findings", len(prev.Report.Findings))
			}
			return workgraph.OutcomeUpToDate, nil
		}

		engine, err := p.engine(entries)
		if err != nil {
			return workgraph.OutcomeFailed, err
		}
		report, err := engine.Analyze(ctx, &lint.Request{
			Root:     node.Dir(),
			Files:    files,
			Disabled: settings.DisabledRules,
		})
		if err != nil {
			return workgraph.OutcomeFailed, err
		}
		p.record(u.Path(), report)

		if err := writeState(state, &lintState{Fingerprint: sum, Report: report}); err != nil {
			return workgraph.OutcomeFailed, err
		}

		if report.Failed() {
			p.printFindings(u, report)
			if !settings.IgnoreFailures {
				return workgraph.OutcomeFailed, fmt.Errorf("%w: %d finding(s) in %d file(s)", ErrLintFailed, len(report.Findings), report.Files)
			}
			logger.Warn("Ignoring lint findings.", "findings", len(report.Findings))
		}
		return workgraph.OutcomeSuccess, nil
	}
}

func (p *Plugin) printFindings(u *workgraph.Unit, r *lint.Report) {
	var b strings.Builder
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "%s: %s\n", u.Path(), f)
	}
	p.printf("%s", b.String())
}

func (p *Plugin) reportAction(lints *workgraph.Group) workgraph.Action {
	return func(ctx context.Context, u *workgraph.Unit) (workgraph.Outcome, error) {
		logger := ctxlog.FromContext(ctx)

		var b strings.Builder
		total, reported := 0, 0
		for _, l := range lints.Units() {
			r, ok := p.Report(l.Path())
			if !ok {
				continue
			}
			reported++
			total += len(r.Findings)
			fmt.Fprintf(&b, "%s: %d file(s), %d finding(s)\n", l.Path(), r.Files, len(r.Findings))
			for _, f := range r.Findings {
				fmt.Fprintf(&b, "  %s\n", f)
			}
		}

		out := filepath.Join(u.Owner().Dir(), OutputDir, "report.txt")
		if err := fsutil.WriteFileAtomic(out, []byte(b.String()), 0o644); err != nil {
			return workgraph.OutcomeFailed, err
		}
		logger.Info("Lint report written.", "path", out, "units", reported, "findings", total)
		return workgraph.OutcomeSuccess, nil
	}
}

func (p *Plugin) constantsAction(root *workspace.Node) workgraph.Action {
	return func(ctx context.Context, u *workgraph.Unit) (workgraph.Outcome, error) {
		entries, err := p.runtimeClasspath()
		if err != nil {
			return workgraph.OutcomeFailed, err
		}

		artifact := buildinfo.Current(entries)
		src, err := artifact.Render()
		if err != nil {
			return workgraph.OutcomeFailed, err
		}

		out := filepath.Join(root.Dir(), OutputDir, "constants.go")
		if existing, err := os.ReadFile(out); err == nil && string(existing) == string(src) {
			return workgraph.OutcomeUpToDate, nil
		}
		if err := fsutil.WriteFileAtomic(out, src, 0o644); err != nil {
			return workgraph.OutcomeFailed, err
		}
		ctxlog.FromContext(ctx).Debug("Generated constants written.", "path", out, "classpath", len(entries))
		return workgraph.OutcomeSuccess, nil
	}
}
