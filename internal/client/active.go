package client

import (
	"sync/atomic"

	"tab/internal/protocol"
)

// ActiveTab holds the tab that stdin is routed to. It starts at TabID(0)
// and is updated when the daemon reports the tab we asked for.
type ActiveTab struct {
	id atomic.Uint64
}

func (a *ActiveTab) Get() protocol.TabID {
	return protocol.TabID(a.id.Load())
}

func (a *ActiveTab) Set(id protocol.TabID) {
	a.id.Store(uint64(id))
}
