package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"tab/internal/wire"
)

// Sink is the sending half of a split connection.
type Sink[T any] struct {
	conn      FrameConn
	codec     wire.Codec[T]
	closeWhen func(T) bool

	mu     sync.Mutex
	closed bool
}

// Stream is the receiving half of a split connection.
type Stream[T any] struct {
	conn  FrameConn
	codec wire.Codec[T]
	done  bool
}

// Split wraps conn into independent sending and receiving halves. closeWhen
// may be nil; when set, a message for which it reports true is replaced by a
// close frame.
func Split[Out, In any](conn FrameConn, out wire.Codec[Out], in wire.Codec[In], closeWhen func(Out) bool) (*Sink[Out], *Stream[In]) {
	sink := &Sink[Out]{conn: conn, codec: out, closeWhen: closeWhen}
	stream := &Stream[In]{conn: conn, codec: in}
	return sink, stream
}

// Send encodes message and writes it as one frame. It returns once the frame
// has been handed to the transport.
func (s *Sink[T]) Send(ctx context.Context, message T) error {
	frame, err := wire.EncodeOrClose(s.codec, message, s.closeWhen)
	if err != nil {
		return err
	}
	return s.write(ctx, frame)
}

// Close writes the close frame unless one was already written.
func (s *Sink[T]) Close(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil
	}
	return s.write(ctx, wire.CloseFrame())
}

// Closed reports whether a close frame has been written.
func (s *Sink[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Sink[T]) write(ctx context.Context, frame wire.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	if frame.IsClose() {
		s.closed = true
	}
	if err := s.conn.WriteFrame(ctx, frame); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

// Next reads and decodes the next message. It returns io.EOF once the peer has
// closed the stream, a *protocol.DecodeError for an undecodable frame, and a
// *TransportError when the connection fails.
func (s *Stream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if s.done {
		return zero, io.EOF
	}
	frame, err := s.conn.ReadFrame(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.done = true
			return zero, io.EOF
		}
		return zero, &TransportError{Op: "read", Err: err}
	}
	message, err := wire.Decode(s.codec, frame)
	if errors.Is(err, io.EOF) {
		s.done = true
	}
	return message, err
}
