package session

import (
	"errors"
	"fmt"
)

// ErrSinkClosed is returned by Sink.Send after the sink wrote a close frame.
var ErrSinkClosed = errors.New("session: sink closed")

// TransportError wraps a failure of the underlying connection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
