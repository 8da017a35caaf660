package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/specialistvlad/lintgrid/internal/ctxlog"
	"github.com/specialistvlad/lintgrid/internal/workgraph"
)

// ErrUnitFailed matches the error of every unit that ended FAILED.
var ErrUnitFailed = errors.New("unit failed")

// UnitError is the failure of one unit.
type UnitError struct {
	Path string
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUnitFailed, e.Path, e.Err)
}

// Unwrap returns the unit's own error.
func (e *UnitError) Unwrap() error { return e.Err }

// Is makes every UnitError match ErrUnitFailed.
func (e *UnitError) Is(target error) bool { return target == ErrUnitFailed }

// DefaultWorkers is the pool size used when Options.Workers is not positive.
const DefaultWorkers = 4

// Options configure an Executor.
type Options struct {
	Workers int
	// ContinueOnFailure keeps scheduling units that do not depend on a
	// failed unit.
	ContinueOnFailure bool
	// Out receives one "> Task <path> <OUTCOME>" line per executed unit.
	Out io.Writer
	// Listener, if set, is told about every executed unit.
	Listener Listener
}

// Listener observes unit completions. It is called from the coordinating
// goroutine in completion order and must not block for long.
type Listener interface {
	UnitFinished(ctx context.Context, r UnitResult)
}

// UnitResult records the execution of one unit.
type UnitResult struct {
	Path     string
	Outcome  workgraph.Outcome
	Err      error
	Duration time.Duration
}

// Result is the outcome of running a plan.
type Result struct {
	// Units lists executed units in completion order.
	Units []UnitResult
	// NotExecuted lists selected units that never started, in plan order.
	NotExecuted []string
}

// Failed reports whether any unit failed.
func (r *Result) Failed() bool {
	for _, u := range r.Units {
		if u.Outcome == workgraph.OutcomeFailed {
			return true
		}
	}
	return false
}

// Outcome returns the outcome of the unit at path, if it executed.
func (r *Result) Outcome(path string) (workgraph.Outcome, bool) {
	for _, u := range r.Units {
		if u.Path == path {
			return u.Outcome, true
		}
	}
	return "", false
}

// Executor runs plans.
type Executor struct {
	opts Options
}

// New returns an executor with opts.
func New(opts Options) *Executor {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Executor{opts: opts}
}

// unitState is owned by the coordinator.
type unitState struct {
	unit  *workgraph.Unit
	index int
	// waiting counts hard and ordering predecessors not finished yet.
	waiting int
	// blocked is set once a hard predecessor failed or was blocked.
	blocked bool
	started bool
	done    bool
}

// Run executes p. It returns the per-unit results and, when any unit failed,
// an error joining every failure.
func (e *Executor) Run(ctx context.Context, p *Plan) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executor starting.", "units", p.Len(), "workers", e.opts.Workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states := make(map[string]*unitState, p.Len())
	var ready []*unitState
	for i, path := range p.order {
		deps, _ := p.graph.Dependencies(path)
		after, _ := p.graph.OrderingPredecessors(path)
		st := &unitState{unit: p.units[path], index: i, waiting: len(deps) + len(after)}
		states[path] = st
		if st.waiting == 0 {
			ready = append(ready, st)
		}
	}

	work := make(chan *workgraph.Unit)
	results := make(chan UnitResult)
	for i := 0; i < e.opts.Workers; i++ {
		go e.worker(ctx, i, work, results)
	}
	defer close(work)

	// finish marks path done and releases its successors. Units whose hard
	// predecessor failed are finished in turn without running.
	var finish func(path string, failed bool)
	finish = func(path string, failed bool) {
		states[path].done = true

		dependents, _ := p.graph.Dependents(path)
		successors, _ := p.graph.OrderingSuccessors(path)
		for _, d := range dependents {
			if failed {
				states[d].blocked = true
			}
			states[d].waiting--
		}
		for _, s := range successors {
			states[s].waiting--
		}
		for _, next := range append(dependents, successors...) {
			ns := states[next]
			if ns.waiting != 0 || ns.done || ns.started {
				continue
			}
			if ns.blocked {
				logger.Debug("Unit not executed; a dependency failed.", "unit", next)
				finish(next, true)
				continue
			}
			if !slices.Contains(ready, ns) {
				ready = append(ready, ns)
			}
		}
	}

	result := &Result{}
	var failures []error
	stopping := false
	inFlight := 0
	cancelled := ctx.Done()

	for {
		var send chan<- *workgraph.Unit
		var next *unitState
		if !stopping && len(ready) > 0 {
			slices.SortFunc(ready, func(a, b *unitState) int { return a.index - b.index })
			send, next = work, ready[0]
		}
		if send == nil && inFlight == 0 {
			break
		}

		var nextUnit *workgraph.Unit
		if next != nil {
			nextUnit = next.unit
		}

		select {
		case send <- nextUnit:
			next.started = true
			ready = ready[1:]
			inFlight++
		case r := <-results:
			inFlight--
			failed := r.Outcome == workgraph.OutcomeFailed
			failures = e.record(ctx, result, states, r, failures)
			finish(r.Path, failed)
			if failed && !e.opts.ContinueOnFailure {
				stopping = true
			}
		case <-cancelled:
			logger.Warn("Execution cancelled; waiting for running units.", "running", inFlight)
			stopping = true
			cancelled = nil
		}
	}

	for _, path := range p.order {
		if !states[path].started {
			result.NotExecuted = append(result.NotExecuted, path)
		}
	}

	logger.Debug("Executor finished.", "executed", len(result.Units), "not_executed", len(result.NotExecuted), "failures", len(failures))
	if len(failures) > 0 {
		return result, errors.Join(failures...)
	}
	if err := ctx.Err(); err != nil && len(result.NotExecuted) > 0 {
		return result, err
	}
	return result, nil
}

func (e *Executor) record(ctx context.Context, result *Result, states map[string]*unitState, r UnitResult, failures []error) []error {
	states[r.Path].unit.MarkExecuted()
	result.Units = append(result.Units, r)
	fmt.Fprintf(e.opts.Out, "> Task %s %s\n", r.Path, r.Outcome)
	if e.opts.Listener != nil {
		e.opts.Listener.UnitFinished(ctx, r)
	}
	if r.Outcome == workgraph.OutcomeFailed {
		ctxlog.FromContext(ctx).Error("Unit failed.", "unit", r.Path, "error", r.Err)
		failures = append(failures, &UnitError{Path: r.Path, Err: r.Err})
	}
	return failures
}

// worker is the processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, workerID int, work <-chan *workgraph.Unit, results chan<- UnitResult) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for u := range work {
		unitCtx := ctxlog.With(ctx, "workerID", workerID, "unit", u.Path())
		results <- runUnit(unitCtx, u)
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

func runUnit(ctx context.Context, u *workgraph.Unit) (res UnitResult) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	res.Path = u.Path()

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = workgraph.OutcomeFailed
			res.Err = fmt.Errorf("panic: %v", r)
		}
		res.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		res.Outcome, res.Err = workgraph.OutcomeFailed, err
		return res
	}
	if u.Action == nil {
		res.Outcome = workgraph.OutcomeSuccess
		return res
	}

	logger.Debug("Unit started.")
	outcome, err := u.Action(ctx, u)
	switch {
	case err != nil:
		res.Outcome, res.Err = workgraph.OutcomeFailed, err
	case outcome == workgraph.OutcomeFailed:
		res.Outcome, res.Err = outcome, errors.New("unit reported failure")
	case outcome == "":
		res.Outcome = workgraph.OutcomeSuccess
	default:
		res.Outcome = outcome
	}
	logger.Debug("Unit finished.", "outcome", res.Outcome)
	return res
}
