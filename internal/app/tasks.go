package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/specialistvlad/lintgrid/internal/ctxlog"
	"github.com/specialistvlad/lintgrid/internal/workgraph"
)

// Tasks configures the build and lists every registered unit with its
// kind, hard predecessors and ordering constraints.
func (a *App) Tasks(ctx context.Context, w io.Writer) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if err := a.Configure(ctx); err != nil {
		a.writeSummary(nil, err)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UNIT\tKIND\tGROUP\tDEPENDS ON\tRUNS AFTER\tDESCRIPTION")
	for _, u := range a.graph.Units() {
		deps, err := a.graph.HardPredecessors(u)
		if err != nil {
			return err
		}
		after, err := a.graph.OrderingPredecessors(u)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.Path(), u.Kind(), orDash(u.Group), joinPaths(deps), joinPaths(after), u.Description)
	}
	return tw.Flush()
}

func joinPaths(units []*workgraph.Unit) string {
	if len(units) == 0 {
		return "-"
	}
	paths := make([]string, len(units))
	for i, u := range units {
		paths[i] = u.Path()
	}
	return strings.Join(paths, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
