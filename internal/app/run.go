package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/lintgrid/internal/ctxlog"
	"github.com/specialistvlad/lintgrid/internal/events"
	"github.com/specialistvlad/lintgrid/internal/executor"
)

// Run configures the build and executes the requested tasks. The build
// summary is written to the app's output whatever the result.
func (a *App) Run(ctx context.Context) (*executor.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "tasks", a.config.Tasks)

	result, err := a.run(ctx)
	a.writeSummary(result, err)

	a.logger.Debug("App.Run method finished.")
	return result, err
}

func (a *App) run(ctx context.Context) (*executor.Result, error) {
	if err := a.Configure(ctx); err != nil {
		return nil, err
	}

	plan, err := executor.NewPlan(a.graph, a.config.Tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to plan tasks: %w", err)
	}
	a.logger.Debug("Execution plan built.", "units", plan.Len(), "order", plan.Paths())

	opts := executor.Options{
		Workers:           a.config.WorkerCount,
		ContinueOnFailure: a.config.ContinueOnFailure,
		Out:               a.outW,
	}
	publisher := a.dialEvents(ctx)
	if publisher != nil {
		defer publisher.Close()
		opts.Listener = publisher
	}

	result, err := executor.New(opts).Run(ctx, plan)
	if publisher != nil {
		publisher.BuildFinished(ctx, result, err)
	}
	return result, err
}

// dialEvents connects the build event stream. Events are best effort: a
// failed connection is logged and the build goes on without them.
func (a *App) dialEvents(ctx context.Context) *events.Publisher {
	if a.config.EventsURL == "" {
		return nil
	}
	publisher, err := events.Dial(ctx, a.config.EventsURL, a.config.EventsNamespace, events.DefaultTimeout)
	if err != nil {
		a.logger.Warn("Build events disabled.", "url", a.config.EventsURL, "error", err)
		return nil
	}
	return publisher
}
