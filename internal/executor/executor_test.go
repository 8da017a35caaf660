package executor

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/lintgrid/internal/ctxlog"
	"github.com/specialistvlad/lintgrid/internal/workgraph"
	"github.com/specialistvlad/lintgrid/internal/workspace"
)

// recorder collects the order in which unit actions ran.
type recorder struct {
	mu   sync.Mutex
	runs []string
}

func (r *recorder) action(outcome workgraph.Outcome, err error) workgraph.Action {
	return func(ctx context.Context, u *workgraph.Unit) (workgraph.Outcome, error) {
		r.mu.Lock()
		r.runs = append(r.runs, u.Path())
		r.mu.Unlock()
		return outcome, err
	}
}

func (r *recorder) ran() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

type world struct {
	graph *workgraph.Graph
	root  *workspace.Node
	app   *workspace.Node
	lib   *workspace.Node
	rec   *recorder
}

func newWorld(t *testing.T) *world {
	t.Helper()
	c := workspace.NewComposition("sandbox", t.TempDir())
	root := c.RealRoot()
	app, err := root.AddChild("app", "")
	require.NoError(t, err)
	lib, err := root.AddChild("lib", "")
	require.NoError(t, err)
	return &world{graph: workgraph.New(c), root: root, app: app, lib: lib, rec: &recorder{}}
}

func (w *world) unit(t *testing.T, n *workspace.Node, name string, outcome workgraph.Outcome, err error, configure func(*workgraph.Unit)) *workgraph.Unit {
	t.Helper()
	u, regErr := w.graph.MaybeRegister(n, name, func(u *workgraph.Unit) {
		u.Action = w.rec.action(outcome, err)
		if configure != nil {
			configure(u)
		}
	})
	require.NoError(t, regErr)
	return u
}

func testCtx() context.Context { return ctxlog.Discard(context.Background()) }

func TestNewPlan_Selection(t *testing.T) {
	w := newWorld(t)
	for _, n := range []*workspace.Node{w.root, w.app, w.lib} {
		lint := w.unit(t, n, "lint", workgraph.OutcomeSuccess, nil, nil)
		w.unit(t, n, "check", workgraph.OutcomeSuccess, nil, func(u *workgraph.Unit) { u.DependOn(lint) })
	}
	inc, err := w.root.Build().IncludeBuild("build-logic", "")
	require.NoError(t, err)
	w.unit(t, inc.Root(), "lint", workgraph.OutcomeSuccess, nil, nil)

	t.Run("name selects every module of the root build", func(t *testing.T) {
		p, err := NewPlan(w.graph, []string{"lint"})
		require.NoError(t, err)
		assert.Equal(t, []string{":lint", ":app:lint", ":lib:lint"}, p.Paths())
	})

	t.Run("path selects one unit anywhere", func(t *testing.T) {
		p, err := NewPlan(w.graph, []string{":build-logic:lint"})
		require.NoError(t, err)
		assert.Equal(t, []string{":build-logic:lint"}, p.Paths())
	})

	t.Run("hard predecessors are pulled in", func(t *testing.T) {
		p, err := NewPlan(w.graph, []string{":app:check"})
		require.NoError(t, err)
		assert.Equal(t, []string{":app:lint", ":app:check"}, p.Paths())
		u, ok := p.Unit(":app:lint")
		require.True(t, ok)
		assert.Equal(t, "lint", u.Name())
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := NewPlan(w.graph, []string{"publish"})
		assert.ErrorIs(t, err, workgraph.ErrUnknownUnit)
		_, err = NewPlan(w.graph, []string{":app:publish"})
		assert.ErrorIs(t, err, workgraph.ErrUnknownUnit)
		_, err = NewPlan(w.graph, []string{"app:lint"})
		assert.ErrorIs(t, err, workgraph.ErrInvalidName)
		_, err = NewPlan(w.graph, nil)
		assert.Error(t, err)
	})
}

func TestNewPlan_OrderingDoesNotSelect(t *testing.T) {
	w := newWorld(t)
	format := w.unit(t, w.app, "format", workgraph.OutcomeSuccess, nil, nil)
	w.unit(t, w.app, "lint", workgraph.OutcomeSuccess, nil, func(u *workgraph.Unit) { u.MustRunAfter(format) })

	p, err := NewPlan(w.graph, []string{":app:lint"})
	require.NoError(t, err)
	assert.Equal(t, []string{":app:lint"}, p.Paths())

	p, err = NewPlan(w.graph, []string{":app:lint", ":app:format"})
	require.NoError(t, err)
	assert.Equal(t, []string{":app:format", ":app:lint"}, p.Paths())
}

func TestNewPlan_Cycle(t *testing.T) {
	w := newWorld(t)
	a := w.unit(t, w.app, "a", workgraph.OutcomeSuccess, nil, nil)
	b := w.unit(t, w.app, "b", workgraph.OutcomeSuccess, nil, func(u *workgraph.Unit) { u.DependOn(a) })
	a.MustRunAfter(b)

	_, err := NewPlan(w.graph, []string{":app:b"})
	assert.ErrorContains(t, err, "cycle detected")
}

func TestRun_Success(t *testing.T) {
	w := newWorld(t)
	lint := w.unit(t, w.app, "lint", workgraph.OutcomeSuccess, nil, nil)
	w.unit(t, w.app, "check", "", nil, func(u *workgraph.Unit) { u.DependOn(lint) })

	p, err := NewPlan(w.graph, []string{"check"})
	require.NoError(t, err)

	var out bytes.Buffer
	res, err := New(Options{Out: &out}).Run(testCtx(), p)
	require.NoError(t, err)

	assert.False(t, res.Failed())
	assert.Equal(t, []string{":app:lint", ":app:check"}, w.rec.ran())
	assert.Equal(t, "> Task :app:lint SUCCESS\n> Task :app:check SUCCESS\n", out.String())
	assert.Equal(t, workgraph.StateExecuted, lint.State())
	assert.Empty(t, res.NotExecuted)
}

func TestRun_FailFast(t *testing.T) {
	w := newWorld(t)
	boom := errors.New("boom")
	bad := w.unit(t, w.app, "lint", "", boom, nil)
	w.unit(t, w.app, "check", workgraph.OutcomeSuccess, nil, func(u *workgraph.Unit) { u.DependOn(bad) })
	first := w.unit(t, w.lib, "first", workgraph.OutcomeSuccess, nil, nil)
	w.unit(t, w.lib, "later", workgraph.OutcomeSuccess, nil, func(u *workgraph.Unit) { u.DependOn(first) })

	p, err := NewPlan(w.graph, []string{":app:check", ":lib:later"})
	require.NoError(t, err)

	res, err := New(Options{Workers: 1}).Run(testCtx(), p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnitFailed)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), ":app:lint")

	outcome, ok := res.Outcome(":app:lint")
	require.True(t, ok)
	assert.Equal(t, workgraph.OutcomeFailed, outcome)
	_, ok = res.Outcome(":app:check")
	assert.False(t, ok)
	assert.Contains(t, res.NotExecuted, ":app:check")
	assert.Contains(t, res.NotExecuted, ":lib:later")
}

func TestRun_Continue(t *testing.T) {
	w := newWorld(t)
	bad := w.unit(t, w.app, "lint", workgraph.OutcomeFailed, nil, nil)
	w.unit(t, w.app, "check", workgraph.OutcomeSuccess, nil, func(u *workgraph.Unit) { u.DependOn(bad) })
	w.unit(t, w.app, "report", workgraph.OutcomeSuccess, nil, func(u *workgraph.Unit) { u.DependOn(workgraph.Path("check")) })
	w.unit(t, w.lib, "lint", workgraph.OutcomeSuccess, nil, nil)

	p, err := NewPlan(w.graph, []string{"report", "lint"})
	require.NoError(t, err)

	res, err := New(Options{ContinueOnFailure: true}).Run(testCtx(), p)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unit reported failure")

	outcome, ok := res.Outcome(":lib:lint")
	require.True(t, ok)
	assert.Equal(t, workgraph.OutcomeSuccess, outcome)
	assert.ElementsMatch(t, []string{":app:check", ":app:report"}, res.NotExecuted)
	assert.True(t, res.Failed())
}

func TestRun_OrderingOnlyIgnoresOutcome(t *testing.T) {
	w := newWorld(t)
	format := w.unit(t, w.app, "format", workgraph.OutcomeFailed, nil, nil)
	w.unit(t, w.app, "lint", workgraph.OutcomeSuccess, nil, func(u *workgraph.Unit) { u.MustRunAfter(format) })

	p, err := NewPlan(w.graph, []string{":app:lint", ":app:format"})
	require.NoError(t, err)

	res, err := New(Options{ContinueOnFailure: true}).Run(testCtx(), p)
	require.Error(t, err)
	assert.Equal(t, []string{":app:format", ":app:lint"}, w.rec.ran())
	outcome, _ := res.Outcome(":app:lint")
	assert.Equal(t, workgraph.OutcomeSuccess, outcome)
}

func TestRun_OutcomesAndPanics(t *testing.T) {
	w := newWorld(t)
	w.unit(t, w.app, "skipped", workgraph.OutcomeSkipped, nil, nil)
	w.unit(t, w.app, "cached", workgraph.OutcomeUpToDate, nil, nil)
	_, err := w.graph.MaybeRegister(w.app, "panics", func(u *workgraph.Unit) {
		u.Action = func(context.Context, *workgraph.Unit) (workgraph.Outcome, error) { panic("kaboom") }
	})
	require.NoError(t, err)
	_, err = w.graph.MaybeRegister(w.app, "lifecycle", nil)
	require.NoError(t, err)

	p, err := NewPlan(w.graph, []string{"skipped", "cached", "panics", "lifecycle"})
	require.NoError(t, err)

	res, err := New(Options{ContinueOnFailure: true, Workers: 2}).Run(testCtx(), p)
	assert.ErrorContains(t, err, "panic: kaboom")

	want := map[string]workgraph.Outcome{
		":app:skipped":   workgraph.OutcomeSkipped,
		":app:cached":    workgraph.OutcomeUpToDate,
		":app:panics":    workgraph.OutcomeFailed,
		":app:lifecycle": workgraph.OutcomeSuccess,
	}
	for path, outcome := range want {
		got, ok := res.Outcome(path)
		require.True(t, ok, path)
		assert.Equal(t, outcome, got, path)
	}
}

func TestRun_Cancelled(t *testing.T) {
	w := newWorld(t)
	w.unit(t, w.app, "lint", workgraph.OutcomeSuccess, nil, nil)
	p, err := NewPlan(w.graph, []string{"lint"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(testCtx())
	cancel()
	res, err := New(Options{}).Run(ctx, p)
	require.Error(t, err)
	for _, u := range res.Units {
		assert.Equal(t, workgraph.OutcomeFailed, u.Outcome)
	}
}

type listener struct {
	results []UnitResult
}

func (l *listener) UnitFinished(_ context.Context, r UnitResult) { l.results = append(l.results, r) }

func TestRun_Listener(t *testing.T) {
	w := newWorld(t)
	boom := errors.New("boom")
	lint := w.unit(t, w.app, "lint", workgraph.OutcomeFailed, boom, nil)
	w.unit(t, w.app, "check", "", nil, func(u *workgraph.Unit) { u.DependOn(lint) })

	p, err := NewPlan(w.graph, []string{":app:check"})
	require.NoError(t, err)

	l := &listener{}
	_, err = New(Options{Listener: l}).Run(testCtx(), p)
	require.Error(t, err)

	require.Len(t, l.results, 1, "blocked units are not reported")
	assert.Equal(t, ":app:lint", l.results[0].Path)
	assert.Equal(t, workgraph.OutcomeFailed, l.results[0].Outcome)
	assert.ErrorIs(t, l.results[0].Err, boom)
}
