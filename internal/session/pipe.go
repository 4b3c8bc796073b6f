package session

import (
	"context"
	"errors"
	"sync"

	"tab/internal/wire"
)

// ErrPipeClosed is returned by pipe ends after Close.
var ErrPipeClosed = errors.New("session: pipe closed")

type pipeEnd struct {
	in   <-chan wire.Frame
	out  chan<- wire.Frame
	done chan struct{}
	once *sync.Once

	mu          sync.Mutex
	writeClosed bool
}

// Pipe returns two connected in-memory FrameConns. Frames written to one end
// are read from the other in order. Writes block until the peer reads.
func Pipe() (FrameConn, FrameConn) {
	aToB := make(chan wire.Frame)
	bToA := make(chan wire.Frame)
	done := make(chan struct{})
	once := &sync.Once{}
	a := &pipeEnd{in: bToA, out: aToB, done: done, once: once}
	b := &pipeEnd{in: aToB, out: bToA, done: done, once: once}
	return a, b
}

func (p *pipeEnd) ReadFrame(ctx context.Context) (wire.Frame, error) {
	select {
	case frame := <-p.in:
		return frame, nil
	case <-p.done:
		return wire.Frame{}, ErrPipeClosed
	case <-ctx.Done():
		return wire.Frame{}, ctx.Err()
	}
}

func (p *pipeEnd) WriteFrame(ctx context.Context, frame wire.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeClosed {
		return ErrPipeClosed
	}
	select {
	case p.out <- frame:
	case <-p.done:
		return ErrPipeClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	if frame.IsClose() {
		p.writeClosed = true
	}
	return nil
}

func (p *pipeEnd) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
