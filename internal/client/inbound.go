package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"tab/internal/logging"
	"tab/internal/protocol"
)

// ResponseStream yields responses from the daemon in arrival order.
type ResponseStream interface {
	Next(ctx context.Context) (protocol.Response, error)
}

// Inbound routes daemon responses to the local outputs.
type Inbound struct {
	Stream ResponseStream
	Stdout io.Writer
	Stderr io.Writer
	// Active is updated from the TabUpdate naming TabName. May be nil.
	Active  *ActiveTab
	TabName string
	// OnTabList receives each TabList; returning true ends Run.
	OnTabList func([]protocol.TabMetadata) bool
	Logger    *slog.Logger
}

// Run consumes responses until the peer closes the stream, which returns
// nil. Decode, transport and write failures end the session with an error.
func (in *Inbound) Run(ctx context.Context) error {
	logger := in.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	for {
		response, err := in.Stream.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug("daemon closed the session")
				return nil
			}
			return err
		}

		switch msg := response.(type) {
		case protocol.ChunkResponse:
			if err := in.writeChunk(msg.Chunk); err != nil {
				return err
			}
		case protocol.TabUpdate:
			if in.Active != nil && in.TabName != "" && msg.Tab.Name == in.TabName {
				if in.Active.Get() != msg.Tab.ID {
					logger.Debug("active tab selected",
						logging.Uint64(logging.FieldTabID, uint64(msg.Tab.ID)),
						logging.String(logging.FieldTabName, msg.Tab.Name),
					)
				}
				in.Active.Set(msg.Tab.ID)
			}
		case protocol.TabList:
			if in.OnTabList != nil && in.OnTabList(msg.Tabs) {
				return nil
			}
		default:
			logger.Debug("ignoring response", logging.String(logging.FieldMessage, protocol.ResponseName(response)))
		}
	}
}

func (in *Inbound) writeChunk(chunk protocol.Chunk) error {
	var w io.Writer
	switch chunk.Channel {
	case protocol.Stdout:
		w = in.Stdout
	case protocol.Stderr:
		w = in.Stderr
	default:
		return fmt.Errorf("chunk for unknown channel %s", chunk.Channel)
	}
	if w == nil || len(chunk.Data) == 0 {
		return nil
	}
	n, err := w.Write(chunk.Data)
	if err != nil {
		return fmt.Errorf("write %s: %w", chunk.Channel, err)
	}
	if n != len(chunk.Data) {
		return fmt.Errorf("write %s: %w", chunk.Channel, io.ErrShortWrite)
	}
	return nil
}
