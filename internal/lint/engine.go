package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/lintgrid/internal/ctxlog"
)

// Request describes one analysis run.
type Request struct {
	// Root is the directory findings are reported relative to.
	Root string `json:"root"`
	// Files are absolute paths of the files to analyze.
	Files []string `json:"files"`
	// Disabled lists rule ids that must not run.
	Disabled []string `json:"disabled,omitempty"`
}

// Engine analyzes source files.
type Engine interface {
	Analyze(ctx context.Context, req *Request) (*Report, error)
}

// InProcess runs a rule set in the calling process.
type InProcess struct {
	// Rules defaults to Standard().
	Rules []Rule
}

// Analyze implements Engine.
func (e *InProcess) Analyze(ctx context.Context, req *Request) (*Report, error) {
	logger := ctxlog.FromContext(ctx)

	rules, err := Select(e.rules(), req.Disabled)
	if err != nil {
		return nil, err
	}

	perFile := make([][]Finding, len(req.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range req.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			rel := relativeTo(req.Root, path)
			for _, r := range rules {
				for _, f := range r.Check(src) {
					f.File = rel
					perFile[i] = append(perFile[i], f)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Files: len(req.Files), Rules: RuleIDs(rules), Findings: []Finding{}}
	for _, fs := range perFile {
		report.Findings = append(report.Findings, fs...)
	}
	sortFindings(report.Findings)

	logger.Debug("Analysis finished.", "files", report.Files, "findings", len(report.Findings))
	return report, nil
}

func (e *InProcess) rules() []Rule {
	if e.Rules == nil {
		return Standard()
	}
	return e.Rules
}

// Format applies every enabled fixer to each file and rewrites the files
// that changed. It returns the changed paths.
func Format(ctx context.Context, rules []Rule, files []string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	var changed []string
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return changed, err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return changed, err
		}
		out := src
		for _, r := range rules {
			if fx, ok := r.(Fixer); ok {
				out = fx.Fix(out)
			}
		}
		if string(out) == string(src) {
			continue
		}
		if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
			return changed, fmt.Errorf("writing %s: %w", path, err)
		}
		logger.Debug("Formatted file.", "path", path)
		changed = append(changed, path)
	}
	return changed, nil
}

func relativeTo(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
