package session_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"tab/internal/protocol"
	"tab/internal/session"
	"tab/internal/wire"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSplitPreservesOrder(t *testing.T) {
	ctx := testContext(t)
	clientEnd, daemonEnd := session.Pipe()
	sink, _ := session.Split(clientEnd, wire.RequestCodec, wire.ResponseCodec, nil)
	_, requests := session.Split(daemonEnd, wire.ResponseCodec, wire.RequestCodec, nil)

	const count = 100
	sendErr := make(chan error, 1)
	go func() {
		for i := 0; i < count; i++ {
			chunk := protocol.StdinChunk{Data: []byte(fmt.Sprintf("line %d\n", i))}
			if err := sink.Send(ctx, protocol.Stdin{Tab: 1, Chunk: chunk}); err != nil {
				sendErr <- err
				return
			}
		}
		sendErr <- sink.Close(ctx)
	}()

	for i := 0; i < count; i++ {
		request, err := requests.Next(ctx)
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		stdin, ok := request.(protocol.Stdin)
		if !ok {
			t.Fatalf("message %d: got %T, want protocol.Stdin", i, request)
		}
		if want := fmt.Sprintf("line %d\n", i); string(stdin.Chunk.Data) != want {
			t.Fatalf("message %d: got %q, want %q", i, stdin.Chunk.Data, want)
		}
	}
	if _, err := requests.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("after close: error = %v, want io.EOF", err)
	}
	if _, err := requests.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("stream must stay at EOF, got %v", err)
	}
	if err := <-sendErr; err != nil {
		t.Fatalf("sender: %v", err)
	}
}

func TestSinkCloseWhenPredicate(t *testing.T) {
	ctx := testContext(t)
	daemonEnd, clientEnd := session.Pipe()
	closeOnEmptyList := func(response protocol.Response) bool {
		list, ok := response.(protocol.TabList)
		return ok && len(list.Tabs) == 0
	}
	sink, _ := session.Split(daemonEnd, wire.ResponseCodec, wire.RequestCodec, closeOnEmptyList)
	_, responses := session.Split(clientEnd, wire.RequestCodec, wire.ResponseCodec, nil)

	go func() {
		_ = sink.Send(ctx, protocol.TabList{Tabs: []protocol.TabMetadata{{ID: 1, Name: "a"}}})
		_ = sink.Send(ctx, protocol.TabList{})
	}()

	first, err := responses.Next(ctx)
	if err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if list, ok := first.(protocol.TabList); !ok || len(list.Tabs) != 1 {
		t.Fatalf("first response = %#v", first)
	}
	if _, err := responses.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("second Next error = %v, want io.EOF", err)
	}

	waitFor(t, time.Second, sink.Closed)
	err = sink.Send(ctx, protocol.TabList{Tabs: []protocol.TabMetadata{{ID: 2}}})
	if !errors.Is(err, session.ErrSinkClosed) {
		t.Fatalf("Send after close error = %v, want ErrSinkClosed", err)
	}
	if err := sink.Close(ctx); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}

func TestStreamReportsDecodeError(t *testing.T) {
	ctx := testContext(t)
	daemonEnd, clientEnd := session.Pipe()
	_, responses := session.Split(clientEnd, wire.RequestCodec, wire.ResponseCodec, nil)

	go func() {
		_ = daemonEnd.WriteFrame(ctx, wire.Frame{Kind: wire.FrameBinary, Payload: []byte{0x82, 0x09, 0xa0}})
	}()

	_, err := responses.Next(ctx)
	var decodeErr *protocol.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Next error = %v, want *protocol.DecodeError", err)
	}
}

func TestStreamReportsTransportError(t *testing.T) {
	ctx := testContext(t)
	daemonEnd, clientEnd := session.Pipe()
	_, responses := session.Split(clientEnd, wire.RequestCodec, wire.ResponseCodec, nil)
	daemonEnd.Close()

	_, err := responses.Next(ctx)
	var transportErr *session.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Next error = %v, want *session.TransportError", err)
	}
	if !errors.Is(err, session.ErrPipeClosed) {
		t.Fatalf("Next error = %v, want to wrap ErrPipeClosed", err)
	}
}

func TestDialWebsocketDuplex(t *testing.T) {
	ctx := testContext(t)
	received := make(chan protocol.Request, 8)
	serverDone := make(chan error, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			serverDone <- err
			return
		}
		conn := session.NewConn(ws, 0)
		defer conn.Close()
		sink, stream := session.Split(conn, wire.ResponseCodec, wire.RequestCodec, nil)
		for {
			request, err := stream.Next(r.Context())
			if errors.Is(err, io.EOF) {
				serverDone <- nil
				return
			}
			if err != nil {
				serverDone <- err
				return
			}
			received <- request
			if stdin, ok := request.(protocol.Stdin); ok {
				echo := protocol.ChunkResponse{
					Tab:   stdin.Tab,
					Chunk: protocol.Chunk{Channel: protocol.Stdout, Data: stdin.Chunk.Data},
				}
				if err := sink.Send(r.Context(), echo); err != nil {
					serverDone <- err
					return
				}
			}
		}
	}))
	t.Cleanup(srv.Close)

	conn, err := session.Dial(ctx, strings.TrimPrefix(srv.URL, "http://"), session.DialOptions{})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	sink, stream := session.Split(conn, wire.RequestCodec, wire.ResponseCodec, nil)

	sent := protocol.Stdin{Tab: 5, Chunk: protocol.StdinChunk{Data: []byte("pwd\n")}}
	if err := sink.Send(ctx, sent); err != nil {
		t.Fatalf("Send: %v", err)
	}
	response, err := stream.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want := protocol.ChunkResponse{Tab: 5, Chunk: protocol.Chunk{Channel: protocol.Stdout, Data: []byte("pwd\n")}}
	if !reflect.DeepEqual(response, protocol.Response(want)) {
		t.Fatalf("response = %#v, want %#v", response, want)
	}
	if got := <-received; !reflect.DeepEqual(got, protocol.Request(sent)) {
		t.Fatalf("daemon received %#v, want %#v", got, sent)
	}

	if err := sink.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-serverDone:
		if err != nil {
			t.Fatalf("server: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("server did not observe close")
	}
}

func TestAbruptDisconnectIsTransportError(t *testing.T) {
	ctx := testContext(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		_ = ws.CloseNow()
	}))
	t.Cleanup(srv.Close)

	conn, err := session.Dial(ctx, strings.TrimPrefix(srv.URL, "http://"), session.DialOptions{})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	_, stream := session.Split(conn, wire.RequestCodec, wire.ResponseCodec, nil)
	_, err = stream.Next(ctx)
	if errors.Is(err, io.EOF) {
		t.Fatalf("Next error = %v, want a transport error for a connection dropped without a close frame", err)
	}
	var transportErr *session.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Next error = %v, want *session.TransportError", err)
	}
}

func TestPeerCloseFrameIsEOF(t *testing.T) {
	ctx := testContext(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		_ = ws.Close(websocket.StatusNormalClosure, "")
	}))
	t.Cleanup(srv.Close)

	conn, err := session.Dial(ctx, strings.TrimPrefix(srv.URL, "http://"), session.DialOptions{})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	_, stream := session.Split(conn, wire.RequestCodec, wire.ResponseCodec, nil)
	if _, err := stream.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("Next error = %v, want io.EOF", err)
	}
}

func TestDialRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	address := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	_, err := session.Dial(testContext(t), address, session.DialOptions{Timeout: time.Second})
	var transportErr *session.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Dial error = %v, want *session.TransportError", err)
	}
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}
