package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/specialistvlad/lintgrid/internal/classpath"
	"github.com/specialistvlad/lintgrid/internal/config"
	"github.com/specialistvlad/lintgrid/internal/descriptor"
	"github.com/specialistvlad/lintgrid/internal/plugin"
	"github.com/specialistvlad/lintgrid/internal/workgraph"
)

// Environment variables the harness reads.
const (
	// BinaryEnv names a prebuilt lintgrid binary.
	BinaryEnv = "LINTGRID_BIN"
	// KeepEnv keeps workspaces on disk after the test.
	KeepEnv = "LINTGRID_KEEP_SANDBOX"
)

// Options configure a Harness.
type Options struct {
	// Binary is the lintgrid executable. Empty means $LINTGRID_BIN, then
	// lintgrid on $PATH.
	Binary string
	// Classpath is injected into isolated invocations. Empty means the
	// bundled engine and rule set.
	Classpath []classpath.Entry
}

// Option mutates Options.
type Option func(*Options)

// WithBinary selects the lintgrid executable.
func WithBinary(path string) Option {
	return func(o *Options) { o.Binary = path }
}

// WithClasspath replaces the classpath injected into isolated invocations.
func WithClasspath(entries ...classpath.Entry) Option {
	return func(o *Options) { o.Classpath = entries }
}

// Harness owns one ephemeral workspace.
type Harness struct {
	t    testing.TB
	opts Options

	mu     sync.Mutex
	dir    string
	staged map[string][]byte
	order  []string
}

// New returns a harness whose workspace is created on first use.
func New(t testing.TB, opts ...Option) *Harness {
	t.Helper()
	h := &Harness{t: t, staged: make(map[string][]byte)}
	for _, o := range opts {
		o(&h.opts)
	}
	if len(h.opts.Classpath) == 0 {
		h.opts.Classpath = plugin.BundledClasspath()
	}
	return h
}

// Workspace returns the workspace directory, creating it on first access.
func (h *Harness) Workspace() string {
	h.t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.workspace()
}

func (h *Harness) workspace() string {
	if h.dir != "" {
		return h.dir
	}
	dir, err := os.MkdirTemp("", "lintgrid-sandbox-*")
	if err != nil {
		h.t.Fatalf("creating sandbox workspace: %v", err)
	}
	h.dir = dir
	h.t.Cleanup(func() {
		if os.Getenv(KeepEnv) != "" {
			h.t.Logf("Keeping sandbox workspace %s", dir)
			return
		}
		os.RemoveAll(dir)
	})
	return dir
}

// Stage records a file to write at path, relative to the workspace, with
// normalized content. Nothing touches disk until the workspace is
// materialized. Staging a path again replaces its content.
func (h *Harness) Stage(path, content string) {
	h.stage(path, []byte(Normalize(content)))
}

// StageFunc stages the content built by fn.
func (h *Harness) StageFunc(path string, fn func(b *strings.Builder)) {
	var b strings.Builder
	fn(&b)
	h.Stage(path, b.String())
}

// StageRaw stages content byte for byte, for files whose whitespace matters.
func (h *Harness) StageRaw(path string, content []byte) {
	h.stage(path, slices.Clone(content))
}

// StageSettings stages the settings descriptor of the workspace root.
func (h *Harness) StageSettings(s *config.Settings) {
	h.stage(descriptor.SettingsFile, descriptor.RenderSettings(s))
}

// StageModule stages the build descriptor of the module in dir, relative to
// the workspace. An empty dir or "." is the root module.
func (h *Harness) StageModule(dir string, m *config.ModuleDescriptor) {
	h.stage(filepath.Join(dir, descriptor.ModuleFile), descriptor.RenderModule(m))
}

func (h *Harness) stage(path string, content []byte) {
	path = filepath.ToSlash(filepath.Clean(path))
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.staged[path]; !ok {
		h.order = append(h.order, path)
	}
	h.staged[path] = content
}

// Staged returns the content staged for path.
func (h *Harness) Staged(path string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.staged[filepath.ToSlash(filepath.Clean(path))]
	return string(c), ok
}

// MaterializeAll writes every staged file below the workspace, creating
// parent directories. Files are written in staging order.
func (h *Harness) MaterializeAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	root := h.workspace()
	for _, path := range h.order {
		if !filepath.IsLocal(filepath.FromSlash(path)) {
			return &StagingError{Path: path, Err: errors.New("path escapes the workspace")}
		}
		p := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return &StagingError{Path: path, Err: err}
		}
		if err := os.WriteFile(p, h.staged[path], 0o644); err != nil {
			return &StagingError{Path: path, Err: err}
		}
	}
	return nil
}

// Invocation describes one build.
type Invocation struct {
	Tasks         []string
	ExpectSuccess bool
	// IsolatedClasspath runs analysis in a worker process with the harness
	// classpath injected.
	IsolatedClasspath bool
	// NoStacktrace drops --stacktrace, which is passed by default.
	NoStacktrace bool
	// Args are extra build flags.
	Args []string
}

// Invoke materializes the workspace and runs the build, blocking until the
// process exits. A result that contradicts ExpectSuccess is returned along
// with an *InvocationError.
func (h *Harness) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	if err := h.MaterializeAll(); err != nil {
		return nil, err
	}
	bin, err := h.binary()
	if err != nil {
		return nil, err
	}

	args := []string{"build", "--project-dir", h.Workspace()}
	if !inv.NoStacktrace {
		args = append(args, "--stacktrace")
	}
	if inv.IsolatedClasspath {
		args = append(args, "--isolated-worker")
		for _, e := range h.opts.Classpath {
			args = append(args, "--inject-classpath", e.String())
		}
	}
	args = append(args, inv.Args...)
	args = append(args, inv.Tasks...)

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = h.Workspace()
	cmd.Stdout = &out
	cmd.Stderr = &out

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running %s: %w", bin, err)
		}
		exitCode = exitErr.ExitCode()
	}
	if os.Getenv("LINTGRID_TEST_LOGS") == "true" {
		h.t.Logf("--- Build output for %s ---\n%s", strings.Join(inv.Tasks, " "), out.String())
	}

	result := newResult(out.String(), exitCode)
	return result, check(inv, result)
}

// check compares a result with the invocation's expectation.
func check(inv Invocation, r *Result) error {
	fail := func(reason string) error {
		return &InvocationError{Tasks: inv.Tasks, Expected: inv.ExpectSuccess, Reason: reason, Output: r.Output}
	}
	switch {
	case inv.ExpectSuccess && r.ExitCode != 0:
		return fail(fmt.Sprintf("but the build exited with status %d", r.ExitCode))
	case inv.ExpectSuccess && !r.Succeeded:
		return fail("but units failed: " + strings.Join(r.Paths(workgraph.OutcomeFailed), ", "))
	case !inv.ExpectSuccess && r.ExitCode == 0:
		return fail("but the build succeeded")
	}
	return nil
}

func (h *Harness) binary() (string, error) {
	if h.opts.Binary != "" {
		return h.opts.Binary, nil
	}
	if bin := os.Getenv(BinaryEnv); bin != "" {
		return bin, nil
	}
	bin, err := exec.LookPath("lintgrid")
	if err != nil {
		return "", fmt.Errorf("no lintgrid binary: set %s or register the command with testscript.RunMain: %w", BinaryEnv, err)
	}
	return bin, nil
}

// InvokeOption adjusts an Invocation built by ShouldSucceed or ShouldFail.
type InvokeOption func(*Invocation)

// Isolated runs the build with an isolated worker classpath.
func Isolated() InvokeOption {
	return func(inv *Invocation) { inv.IsolatedClasspath = true }
}

// WithoutStacktrace drops --stacktrace.
func WithoutStacktrace() InvokeOption {
	return func(inv *Invocation) { inv.NoStacktrace = true }
}

// WithArgs appends build flags.
func WithArgs(args ...string) InvokeOption {
	return func(inv *Invocation) { inv.Args = append(inv.Args, args...) }
}

// Assertion checks a result.
type Assertion func(t testing.TB, r *Result)

// ShouldSucceed runs tasks, failing the test unless the build succeeds with
// no failed unit, then applies the assertions.
func (h *Harness) ShouldSucceed(tasks []string, assertions []Assertion, opts ...InvokeOption) *Result {
	h.t.Helper()
	return h.should(Invocation{Tasks: tasks, ExpectSuccess: true}, assertions, opts)
}

// ShouldFail runs tasks, failing the test if the build succeeds, then
// applies the assertions.
func (h *Harness) ShouldFail(tasks []string, assertions []Assertion, opts ...InvokeOption) *Result {
	h.t.Helper()
	return h.should(Invocation{Tasks: tasks}, assertions, opts)
}

func (h *Harness) should(inv Invocation, assertions []Assertion, opts []InvokeOption) *Result {
	h.t.Helper()
	for _, o := range opts {
		o(&inv)
	}
	r, err := h.Invoke(context.Background(), inv)
	if err != nil {
		h.t.Fatal(err)
	}
	for _, a := range assertions {
		a(h.t, r)
	}
	return r
}
