package events

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	server "github.com/zishang520/socket.io/v2/socket"
)

// received is one event seen by the test server.
type received struct {
	Event   string
	Payload map[string]any
}

// startServer runs a Socket.IO server that records every build event sent
// to namespace. It returns the base URL to dial.
func startServer(t *testing.T, namespace string) (string, <-chan received) {
	t.Helper()

	io := server.NewServer(nil, nil)
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", io.ServeHandler(nil))
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		io.Close(nil)
		ts.Close()
	})

	got := make(chan received, 32)
	io.Of(namespace, nil).On("connection", func(clients ...any) {
		client := clients[0].(*server.Socket)
		for _, ev := range []string{UnitFinishedEvent, BuildFinishedEvent} {
			client.On(ev, func(args ...any) {
				r := received{Event: ev}
				if len(args) > 0 {
					r.Payload, _ = args[0].(map[string]any)
				}
				got <- r
			})
		}
	})
	return ts.URL, got
}

// next waits for the next recorded event.
func next(t *testing.T, events <-chan received) received {
	t.Helper()
	select {
	case r := <-events:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a build event")
		return received{}
	}
}
