package client

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// MakeRaw puts f in raw mode when it is a terminal so keystrokes reach the
// tab unprocessed. The returned function restores the previous mode; it is a
// no-op when f is not a terminal.
func MakeRaw(f *os.File) (restore func() error, err error) {
	noop := func() error { return nil }
	if f == nil || !isatty.IsTerminal(f.Fd()) {
		return noop, nil
	}
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return noop, err
	}
	return func() error { return term.Restore(fd, state) }, nil
}
