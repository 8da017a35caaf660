package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/lintgrid/internal/ctxlog"
	"github.com/specialistvlad/lintgrid/internal/executor"
	"github.com/specialistvlad/lintgrid/internal/workgraph"
)

// Event names.
const (
	UnitFinishedEvent  = "unit:finished"
	BuildFinishedEvent = "build:finished"
)

// DefaultTimeout bounds the initial connection.
const DefaultTimeout = 5 * time.Second

// Publisher emits build events on a connected Socket.IO client.
type Publisher struct {
	io     *socket.Socket
	logger *slog.Logger
}

// Dial connects to the Socket.IO server at rawURL and joins namespace ("/"
// when empty). The URL path, if any, is the engine.io path on the server.
func Dial(ctx context.Context, rawURL, namespace string, timeout time.Duration) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("events_url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse events URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("events URL %q needs a scheme and a host", rawURL)
	}
	if namespace == "" {
		namespace = "/"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		select {
		case connected <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connected <- err:
		default:
		}
	})

	logger.Debug("Connecting to events endpoint.", "namespace", namespace)
	io.Connect()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	logger.Debug("Connected to events endpoint.", "sid", io.Id())
	return &Publisher{io: io, logger: logger}, nil
}

// UnitFinished implements executor.Listener.
func (p *Publisher) UnitFinished(ctx context.Context, r executor.UnitResult) {
	p.io.Emit(UnitFinishedEvent, UnitPayload(r))
}

// BuildFinished emits the build summary. result may be nil when the build
// failed before anything ran.
func (p *Publisher) BuildFinished(ctx context.Context, result *executor.Result, err error) {
	p.io.Emit(BuildFinishedEvent, BuildPayload(result, err))
}

// Close disconnects from the server.
func (p *Publisher) Close() {
	p.logger.Debug("Disconnecting from events endpoint.")
	p.io.Disconnect()
}

// UnitPayload is the body of a unit event.
func UnitPayload(r executor.UnitResult) map[string]any {
	payload := map[string]any{
		"path":        r.Path,
		"outcome":     string(r.Outcome),
		"duration_ms": r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		payload["error"] = r.Err.Error()
	}
	return payload
}

// BuildPayload is the body of the build event.
func BuildPayload(result *executor.Result, err error) map[string]any {
	counts := map[string]int{}
	executed, notExecuted := 0, 0
	if result != nil {
		for _, u := range result.Units {
			counts[string(u.Outcome)]++
		}
		executed, notExecuted = len(result.Units), len(result.NotExecuted)
	}
	payload := map[string]any{
		"succeeded":    err == nil,
		"executed":     executed,
		"not_executed": notExecuted,
		"failed":       counts[string(workgraph.OutcomeFailed)],
		"up_to_date":   counts[string(workgraph.OutcomeUpToDate)],
		"skipped":      counts[string(workgraph.OutcomeSkipped)],
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	return payload
}
