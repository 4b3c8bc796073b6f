package testsupport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/coder/websocket"

	"tab/internal/protocol"
	"tab/internal/session"
	"tab/internal/wire"
)

// StubDaemonOptions scripts the stub daemon.
type StubDaemonOptions struct {
	// Tabs answers ListTabs. CreateTab appends to it.
	Tabs []protocol.TabMetadata
	// Greeting is written to stdout of a freshly created tab.
	Greeting []byte
	// CloseWhen ends a connection in place of sending the matching response.
	CloseWhen func(protocol.Response) bool
	// DropWhen tears the connection down without a close frame after the
	// matching request is recorded.
	DropWhen func(protocol.Request) bool
}

// StubDaemon is an in-process websocket server speaking the daemon side of
// the protocol. It echoes Stdin back as stdout chunks.
type StubDaemon struct {
	t      testing.TB
	server *httptest.Server
	opts   StubDaemonOptions

	mu       sync.Mutex
	requests []protocol.Request
	tabs     []protocol.TabMetadata
	nextID   protocol.TabID
	done     chan struct{}
}

// StartStubDaemon starts the server and registers cleanup.
func StartStubDaemon(t testing.TB, opts StubDaemonOptions) *StubDaemon {
	t.Helper()
	d := &StubDaemon{
		t:    t,
		opts: opts,
		tabs: append([]protocol.TabMetadata(nil), opts.Tabs...),
		done: make(chan struct{}, 16),
	}
	for _, tab := range d.tabs {
		if tab.ID >= d.nextID {
			d.nextID = tab.ID + 1
		}
	}
	d.server = httptest.NewServer(http.HandlerFunc(d.serve))
	t.Cleanup(d.server.Close)
	return d
}

// Address returns host:port.
func (d *StubDaemon) Address() string {
	return d.server.Listener.Addr().String()
}

// Port returns the listening port.
func (d *StubDaemon) Port() uint16 {
	_, portText, err := net.SplitHostPort(d.Address())
	if err != nil {
		d.t.Fatalf("split stub address: %v", err)
	}
	port, err := strconv.ParseUint(portText, 10, 16)
	if err != nil {
		d.t.Fatalf("parse stub port: %v", err)
	}
	return uint16(port)
}

// Requests returns every request received so far, across connections.
func (d *StubDaemon) Requests() []protocol.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]protocol.Request(nil), d.requests...)
}

// Done signals each time a connection finishes.
func (d *StubDaemon) Done() <-chan struct{} {
	return d.done
}

func (d *StubDaemon) serve(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		d.t.Errorf("stub daemon accept: %v", err)
		return
	}
	conn := session.NewConn(ws, 0)
	defer func() {
		_ = conn.Close()
		d.done <- struct{}{}
	}()

	ctx := r.Context()
	sink, stream := session.Split(conn, wire.ResponseCodec, wire.RequestCodec, d.opts.CloseWhen)
	for {
		request, err := stream.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				d.t.Logf("stub daemon read: %v", err)
			}
			return
		}
		d.mu.Lock()
		d.requests = append(d.requests, request)
		d.mu.Unlock()
		if d.opts.DropWhen != nil && d.opts.DropWhen(request) {
			return
		}

		for _, response := range d.respond(request) {
			if err := sink.Send(ctx, response); err != nil {
				if !errors.Is(err, session.ErrSinkClosed) {
					d.t.Logf("stub daemon write: %v", err)
				}
				return
			}
			if sink.Closed() {
				return
			}
		}
	}
}

func (d *StubDaemon) respond(request protocol.Request) []protocol.Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch msg := request.(type) {
	case protocol.ListTabs:
		return []protocol.Response{protocol.TabList{Tabs: append([]protocol.TabMetadata(nil), d.tabs...)}}
	case protocol.CreateTab:
		for _, tab := range d.tabs {
			if tab.Name == msg.Metadata.Name {
				return []protocol.Response{protocol.TabUpdate{Tab: tab}}
			}
		}
		tab := protocol.TabMetadata{ID: d.nextID, Name: msg.Metadata.Name, Dimensions: [2]uint16{80, 24}}
		d.nextID++
		d.tabs = append(d.tabs, tab)
		responses := []protocol.Response{protocol.TabUpdate{Tab: tab}}
		if len(d.opts.Greeting) > 0 {
			responses = append(responses, protocol.ChunkResponse{
				Tab:   tab.ID,
				Chunk: protocol.Chunk{Channel: protocol.Stdout, Data: d.opts.Greeting},
			})
		}
		return responses
	case protocol.Stdin:
		return []protocol.Response{protocol.ChunkResponse{
			Tab:   msg.Tab,
			Chunk: protocol.Chunk{Channel: protocol.Stdout, Data: msg.Chunk.Data},
		}}
	default:
		return nil
	}
}

// Dial connects a client to the stub daemon.
func (d *StubDaemon) Dial(ctx context.Context) *session.Conn {
	d.t.Helper()
	conn, err := session.Dial(ctx, d.Address(), session.DialOptions{})
	if err != nil {
		d.t.Fatalf("dial stub daemon: %v", err)
	}
	return conn
}
