package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/lintgrid/internal/classpath"
	"github.com/specialistvlad/lintgrid/internal/config"
	"github.com/specialistvlad/lintgrid/internal/ctxlog"
	"github.com/specialistvlad/lintgrid/internal/plugin"
	"github.com/specialistvlad/lintgrid/internal/workgraph"
	"github.com/specialistvlad/lintgrid/internal/workspace"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logW   io.Writer
	logger *slog.Logger
	config *Config
	loader config.Loader

	model       *config.Model
	descriptors map[*workspace.Node]*config.ModuleDescriptor
	settings    map[*workspace.Build]*config.Settings
	composition *workspace.Composition
	graph       *workgraph.Graph
	assembler   *classpath.Assembler
	plugin      *plugin.Plugin
	classpath   []classpath.Entry
}

// NewApp is the constructor for the main application. Outcome lines and the
// build summary go to outW, logs go to logW.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logW:   logW,
		logger: logger,
		config: cfg,
		loader: loader,
	}
}

// Configure loads the descriptors, builds the workspace tree and runs the
// configuration pass over every node. It ends the configuration session:
// the work graph is sealed and the isolated worker classpath is frozen.
func (a *App) Configure(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger

	model, err := a.loader.Load(ctx, a.config.ProjectDir)
	if err != nil {
		return fmt.Errorf("failed to load descriptors: %w", err)
	}
	a.model = model
	logger.Debug("Descriptors loaded into unified model.", "dir", model.Dir)

	if err := a.buildComposition(); err != nil {
		return err
	}
	logger.Debug("Workspace tree built.", "builds", len(a.composition.Builds()), "nodes", len(a.composition.Nodes()))

	a.graph = workgraph.New(a.composition)
	a.assembler = classpath.NewAssembler()
	a.plugin = plugin.New(a.graph, a.assembler, plugin.Options{
		Isolated:     a.config.Isolated,
		WorkerBinary: a.config.WorkerBinary,
		Out:          a.outW,
		WorkerStderr: a.logW,
	})

	// Resolve plugin requests up front: the real root needs to know whether
	// anything applies the plugin before any module is configured.
	var targets []*workspace.Node
	for _, n := range a.composition.Nodes() {
		applies, err := plugin.Resolve(a.descriptors[n], a.settings[n.Build()])
		if err != nil {
			return err
		}
		if applies {
			targets = append(targets, n)
		}
	}

	if len(targets) > 0 {
		if err := a.plugin.ApplyRoot(ctx, a.composition.RealRoot()); err != nil {
			return err
		}
	}
	for _, n := range targets {
		if err := a.plugin.Apply(ctx, n, a.descriptors[n]); err != nil {
			return err
		}
	}

	injected, err := classpath.ParseEntries(a.config.InjectClasspath)
	if err != nil {
		return config.Wrap("app.injectClasspath", err)
	}
	if err := a.assembler.RegisterAll(injected...); err != nil {
		return err
	}

	a.graph.Seal()
	if len(targets) > 0 {
		// The single freeze point; every registration happened above.
		entries, err := a.assembler.Freeze()
		if err != nil {
			return err
		}
		a.classpath = entries
		logger.Debug("Isolated worker classpath frozen.", "entries", len(entries))
	} else {
		logger.Warn("No module applies the lint plugin.", "plugin", plugin.ID)
	}

	logger.Debug("Configuration finished.", "units", len(a.graph.Units()), "modules", len(targets))
	return nil
}

// buildComposition turns the model into a workspace tree: the outermost
// build first, then every included build depth-first in declaration order.
func (a *App) buildComposition() error {
	a.descriptors = make(map[*workspace.Node]*config.ModuleDescriptor)
	a.settings = make(map[*workspace.Build]*config.Settings)

	a.composition = workspace.NewComposition(a.model.Settings.RootModule, a.model.Dir)
	return a.addBuild(a.composition.Root(), a.model)
}

func (a *App) addBuild(b *workspace.Build, m *config.Model) error {
	a.settings[b] = m.Settings

	paths, err := m.Settings.ModulePaths()
	if err != nil {
		return err
	}
	nodes := map[string]*workspace.Node{":": b.Root()}
	for _, path := range paths {
		if path == ":" {
			continue
		}
		i := strings.LastIndex(path, ":")
		parentPath := path[:i]
		if parentPath == "" {
			parentPath = ":"
		}
		n, err := nodes[parentPath].AddChild(path[i+1:], config.ModuleDir(m.Dir, path))
		if err != nil {
			return config.Wrap("app.composition", err)
		}
		nodes[path] = n
	}
	for path, n := range nodes {
		a.descriptors[n] = m.Modules[path]
	}

	for _, sub := range m.Includes {
		nested, err := b.IncludeBuild(sub.Settings.RootModule, sub.Dir)
		if err != nil {
			return config.Wrap("app.composition", err)
		}
		if err := a.addBuild(nested, sub); err != nil {
			return err
		}
	}
	return nil
}

// Graph returns the configured work graph. This is primarily for testing.
func (a *App) Graph() *workgraph.Graph { return a.graph }

// Composition returns the workspace tree built by Configure.
func (a *App) Composition() *workspace.Composition { return a.composition }

// Classpath returns the frozen isolated worker classpath.
func (a *App) Classpath() []classpath.Entry { return a.classpath }
