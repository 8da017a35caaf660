package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/specialistvlad/lintgrid/internal/app"
	"github.com/specialistvlad/lintgrid/internal/buildinfo"
	"github.com/specialistvlad/lintgrid/internal/classpath"
	"github.com/specialistvlad/lintgrid/internal/ctxlog"
	"github.com/specialistvlad/lintgrid/internal/descriptor"
	"github.com/specialistvlad/lintgrid/internal/executor"
	"github.com/specialistvlad/lintgrid/internal/lint"
	"github.com/specialistvlad/lintgrid/internal/plugin"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Globals are the flags shared by every command.
type Globals struct {
	LogLevel  string `help:"Logging level: debug, info, warn or error." placeholder:"LEVEL"`
	LogFormat string `help:"Log output format: text or json." placeholder:"FORMAT"`
}

// CLI is the command tree.
type CLI struct {
	Globals

	Build     BuildCmd     `cmd:"" help:"Configure the workspace and run the given units."`
	Tasks     TasksCmd     `cmd:"" help:"List every unit the workspace registers."`
	Worker    WorkerCmd    `cmd:"" hidden:"" help:"Serve one isolated analysis request on stdin."`
	Constants ConstantsCmd `cmd:"" help:"Generate the build constants source file."`
	Version   VersionCmd   `cmd:"" help:"Print version information."`
}

// runEnv is bound into every command's Run method.
type runEnv struct {
	ctx     context.Context
	stdout  io.Writer
	stderr  io.Writer
	globals Globals
}

// BuildCmd runs units.
type BuildCmd struct {
	Tasks []string `arg:"" name:"unit" help:"Units to run: a bare name matches every module of the root build, a :path names one unit."`

	ProjectDir      string   `short:"p" type:"path" default:"." help:"Directory holding settings.hcl."`
	Continue        bool     `help:"Keep running independent units after a failure."`
	Stacktrace      bool     `short:"s" help:"Print the full cause chain of a failure."`
	IsolatedWorker  bool     `help:"Run analysis in a separate worker process."`
	InjectClasspath []string `sep:"none" placeholder:"COORDS" help:"Add group:name:version to the worker classpath. Repeatable."`
	Workers         int      `short:"j" default:"${workers}" help:"Number of units run concurrently."`
	EventsURL       string   `placeholder:"URL" help:"Socket.IO endpoint receiving build events."`
	EventsNamespace string   `default:"/" help:"Socket.IO namespace for build events."`
}

// Run implements the build command.
func (c *BuildCmd) Run(env *runEnv) error {
	cfg, err := app.NewConfig(app.Config{
		ProjectDir:        c.ProjectDir,
		Tasks:             c.Tasks,
		ContinueOnFailure: c.Continue,
		Stacktrace:        c.Stacktrace,
		Isolated:          c.IsolatedWorker,
		InjectClasspath:   c.InjectClasspath,
		WorkerBinary:      selfBinary(),
		LogFormat:         env.globals.LogFormat,
		LogLevel:          env.globals.LogLevel,
		WorkerCount:       c.Workers,
		EventsURL:         c.EventsURL,
		EventsNamespace:   c.EventsNamespace,
	})
	if err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	a := app.NewApp(env.stdout, env.stderr, cfg, descriptor.NewLoader())
	if _, err := a.Run(env.ctx); err != nil {
		// The build summary already explains the failure.
		return &ExitError{Code: ExitFailure}
	}
	return nil
}

// TasksCmd lists units.
type TasksCmd struct {
	ProjectDir string `short:"p" type:"path" default:"." help:"Directory holding settings.hcl."`
}

// Run implements the tasks command.
func (c *TasksCmd) Run(env *runEnv) error {
	cfg, err := app.NewConfig(app.Config{
		ProjectDir: c.ProjectDir,
		LogFormat:  env.globals.LogFormat,
		LogLevel:   env.globals.LogLevel,
	})
	if err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	a := app.NewApp(env.stdout, env.stderr, cfg, descriptor.NewLoader())
	if err := a.Tasks(env.ctx, env.stdout); err != nil {
		return &ExitError{Code: ExitFailure}
	}
	return nil
}

// WorkerCmd is the isolated side of the analysis protocol.
type WorkerCmd struct {
	Classpath []string `sep:"none" placeholder:"COORDS" help:"Classpath entry. Repeatable."`
}

// Run implements the worker command.
func (c *WorkerCmd) Run(env *runEnv) error {
	logger := app.NewLogger(env.globals.LogLevel, env.globals.LogFormat, env.stderr)
	ctx := ctxlog.WithLogger(env.ctx, logger)

	entries, err := classpath.ParseEntries(c.Classpath)
	if err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if err := lint.ServeWorker(ctx, entries, os.Stdin, env.stdout); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	return nil
}

// ConstantsCmd writes the generated constants file.
type ConstantsCmd struct {
	Out              string   `short:"o" type:"path" required:"" help:"File to write."`
	Package          string   `default:"buildinfo" help:"Package clause of the generated file."`
	PluginVersion    string   `default:"${plugin_version}" help:"Plugin version constant."`
	ToolchainVersion string   `default:"${toolchain_version}" help:"Toolchain version constant."`
	Classpath        []string `sep:"none" placeholder:"COORDS" help:"Classpath entries. Defaults to the bundled engine and rule set."`
}

// Run implements the constants command.
func (c *ConstantsCmd) Run(env *runEnv) error {
	entries, err := classpath.ParseEntries(c.Classpath)
	if err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if len(entries) == 0 {
		for _, e := range plugin.BundledClasspath() {
			e.Version = c.ToolchainVersion
			entries = append(entries, e)
		}
	}

	artifact := buildinfo.Current(entries)
	artifact.Package = c.Package
	artifact.PluginVersion = c.PluginVersion
	artifact.ToolchainVersion = c.ToolchainVersion
	if err := artifact.Write(c.Out); err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "Wrote %s\n", c.Out)
	return nil
}

// VersionCmd prints versions.
type VersionCmd struct{}

// Run implements the version command.
func (c *VersionCmd) Run(env *runEnv) error {
	fmt.Fprintf(env.stdout, "lintgrid plugin %s %s\n", buildinfo.PluginID, buildinfo.PluginVersion)
	fmt.Fprintf(env.stdout, "toolchain %s\n", buildinfo.ToolchainVersion)
	return nil
}

// exitCode unwinds kong's exit hook (help, version) back into Run.
type exitCode int

// Run parses args and executes the selected command, returning the process
// exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("lintgrid"),
		kong.Description("Build-time orchestration for source linting across multi-module workspaces."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.Vars{
			"workers":           strconv.Itoa(executor.DefaultWorkers),
			"plugin_version":    buildinfo.PluginVersion,
			"toolchain_version": buildinfo.ToolchainVersion,
		},
	)
	if err != nil {
		fmt.Fprintf(stderr, "lintgrid: %v\n", err)
		return ExitFailure
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "lintgrid: error: %v\n", err)
		return ExitUsage
	}

	env := &runEnv{ctx: ctx, stdout: stdout, stderr: stderr, globals: cli.Globals}
	if err := kctx.Run(env); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintf(stderr, "lintgrid: error: %s\n", exitErr.Message)
			}
			return exitErr.Code
		}
		fmt.Fprintf(stderr, "lintgrid: error: %v\n", err)
		return ExitFailure
	}
	return ExitOK
}

// Main is the process entry point.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// selfBinary locates the running executable by the name it was started
// with, so the isolated worker is started the same way.
func selfBinary() string {
	arg0 := os.Args[0]
	switch {
	case filepath.IsAbs(arg0):
		return arg0
	case strings.ContainsRune(arg0, filepath.Separator):
		if abs, err := filepath.Abs(arg0); err == nil {
			return abs
		}
	default:
		if p, err := exec.LookPath(arg0); err == nil {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
		}
	}
	if p, err := os.Executable(); err == nil {
		return p
	}
	return ""
}
