package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/specialistvlad/lintgrid/internal/classpath"
	"github.com/specialistvlad/lintgrid/internal/ctxlog"
)

// ErrNoRuleSet is returned by a worker whose classpath carries no rule set.
var ErrNoRuleSet = errors.New("no rule set on the worker classpath")

// ruleSets maps a classpath artifact name to the rules it provides.
var ruleSets = map[string]func() []Rule{
	"rules-standard": Standard,
}

// RulesFromClasspath resolves the rule sets named by entries, in classpath
// order. Entries that are not rule sets are ignored; a classpath without any
// rule set is an error.
func RulesFromClasspath(entries []classpath.Entry) ([]Rule, error) {
	if len(entries) == 0 {
		return nil, classpath.ErrEmpty
	}
	var rules []Rule
	seen := make(map[string]bool)
	for _, e := range entries {
		load, ok := ruleSets[e.Name]
		if !ok {
			continue
		}
		for _, r := range load() {
			if !seen[r.ID()] {
				seen[r.ID()] = true
				rules = append(rules, r)
			}
		}
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRuleSet, strings.Join(classpath.Strings(entries), ", "))
	}
	return rules, nil
}

// ServeWorker is the worker side of the isolated protocol: it decodes one
// Request from r, analyzes it with the rules found on the classpath and
// encodes the Report to w.
func ServeWorker(ctx context.Context, entries []classpath.Entry, r io.Reader, w io.Writer) error {
	logger := ctxlog.FromContext(ctx)

	rules, err := RulesFromClasspath(entries)
	if err != nil {
		return err
	}
	logger.Debug("Worker classpath resolved.", "entries", len(entries), "rules", len(rules))

	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decoding worker request: %w", err)
	}

	report, err := (&InProcess{Rules: rules}).Analyze(ctx, &req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// IsolatedWorker runs the analysis in a separate lintgrid process. The child
// only knows the classpath it is given on its command line.
type IsolatedWorker struct {
	// Binary is the lintgrid executable. Empty means the running executable.
	Binary    string
	Classpath []classpath.Entry
	// Stderr receives the worker's diagnostics. Nil discards them.
	Stderr io.Writer
}

// Analyze implements Engine.
func (e *IsolatedWorker) Analyze(ctx context.Context, req *Request) (*Report, error) {
	logger := ctxlog.FromContext(ctx)

	if len(e.Classpath) == 0 {
		return nil, classpath.ErrEmpty
	}

	bin := e.Binary
	if bin == "" {
		var err error
		if bin, err = os.Executable(); err != nil {
			return nil, fmt.Errorf("locating lintgrid executable: %w", err)
		}
	}

	args := []string{"worker"}
	for _, entry := range e.Classpath {
		args = append(args, "--classpath", entry.String())
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = e.Stderr

	logger.Debug("Starting isolated worker.", "binary", bin, "classpath", len(e.Classpath))
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("isolated worker failed: %w", err)
	}

	var report Report
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		return nil, fmt.Errorf("decoding worker report: %w", err)
	}
	return &report, nil
}
