package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"tab/internal/wire"
)

// DefaultMaxMessageSize bounds a single inbound frame. Terminal output chunks
// are small; the limit only guards against a misbehaving peer.
const DefaultMaxMessageSize = 16 * 1024 * 1024

const defaultDialTimeout = 5 * time.Second

// FrameConn is a message-oriented, full-duplex connection.
type FrameConn interface {
	ReadFrame(ctx context.Context) (wire.Frame, error)
	WriteFrame(ctx context.Context, frame wire.Frame) error
	Close() error
}

// DialOptions controls Dial.
type DialOptions struct {
	MaxMessageSize int64
	Timeout        time.Duration
}

// Conn adapts a websocket connection to FrameConn.
type Conn struct {
	ws      *websocket.Conn
	closing atomic.Bool
}

var _ FrameConn = (*Conn)(nil)

// Dial opens a websocket connection to the daemon listening on address
// (host:port).
func Dial(ctx context.Context, address string, opts DialOptions) (*Conn, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := fmt.Sprintf("ws://%s/", address)
	ws, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		return nil, &TransportError{Op: "dial " + url, Err: err}
	}
	return NewConn(ws, opts.MaxMessageSize), nil
}

// NewConn wraps an established websocket. A non-positive limit selects
// DefaultMaxMessageSize.
func NewConn(ws *websocket.Conn, maxMessageSize int64) *Conn {
	if maxMessageSize <= 0 {
		maxMessageSize = DefaultMaxMessageSize
	}
	ws.SetReadLimit(maxMessageSize)
	return &Conn{ws: ws}
}

// ReadFrame reads the next frame. A normal close from the peer is reported as
// a close frame rather than an error. A connection that ends without a close
// frame is an error.
func (c *Conn) ReadFrame(ctx context.Context) (wire.Frame, error) {
	kind, payload, err := c.ws.Read(ctx)
	if err != nil {
		if isPeerClose(err) {
			return wire.CloseFrame(), nil
		}
		// Reads racing our own closing handshake see the connection torn down.
		if c.closing.Load() && (errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF)) {
			return wire.CloseFrame(), nil
		}
		return wire.Frame{}, err
	}
	switch kind {
	case websocket.MessageBinary:
		return wire.Frame{Kind: wire.FrameBinary, Payload: payload}, nil
	default:
		return wire.Frame{Kind: wire.FrameText, Payload: payload}, nil
	}
}

// WriteFrame writes one frame. Writing the close frame performs the websocket
// closing handshake.
func (c *Conn) WriteFrame(ctx context.Context, frame wire.Frame) error {
	switch frame.Kind {
	case wire.FrameClose:
		c.closing.Store(true)
		err := c.ws.Close(websocket.StatusNormalClosure, "")
		if err != nil && !isPeerClose(err) && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case wire.FrameBinary:
		return c.ws.Write(ctx, websocket.MessageBinary, frame.Payload)
	default:
		return fmt.Errorf("write %s frame: unsupported", frame.Kind)
	}
}

// Close tears the connection down without a closing handshake.
func (c *Conn) Close() error {
	c.closing.Store(true)
	return c.ws.CloseNow()
}

// isPeerClose reports whether err carries a close frame with an orderly status.
func isPeerClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
