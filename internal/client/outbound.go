package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"tab/internal/logging"
	"tab/internal/protocol"
)

// DefaultBufferSize is the largest stdin read forwarded in one message.
const DefaultBufferSize = 512

// RequestSink accepts requests headed for the daemon.
type RequestSink interface {
	Send(ctx context.Context, request protocol.Request) error
}

// Outbound sends the handshake and then forwards Input to the active tab.
type Outbound struct {
	Sink       RequestSink
	Input      io.Reader
	Active     *ActiveTab
	BufferSize int
	Logger     *slog.Logger
}

// Run sends the handshake and forwards input until end of input. It returns
// nil when Input reports io.EOF.
func (o *Outbound) Run(ctx context.Context, credential []byte, tabName string) error {
	if err := o.SendHandshake(ctx, credential, tabName); err != nil {
		return err
	}
	return o.Forward(ctx)
}

// SendHandshake sends Auth, ListTabs and CreateTab in that order. Each send
// completes before the next begins.
func (o *Outbound) SendHandshake(ctx context.Context, credential []byte, tabName string) error {
	if credential == nil {
		credential = []byte{}
	}
	handshake := []protocol.Request{
		protocol.Auth{Credential: credential},
		protocol.ListTabs{},
		protocol.CreateTab{Metadata: protocol.CreateTabMetadata{Name: tabName}},
	}
	for _, request := range handshake {
		if err := o.Sink.Send(ctx, request); err != nil {
			return fmt.Errorf("send %s: %w", protocol.RequestName(request), err)
		}
	}
	o.logger().Debug("handshake sent", logging.String(logging.FieldTabName, tabName))
	return nil
}

// Forward copies Input to the active tab one read at a time. A read that
// returns no bytes and no error is skipped.
func (o *Outbound) Forward(ctx context.Context) error {
	size := o.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	buf := make([]byte, size)
	for {
		n, readErr := o.Input.Read(buf)
		if n > 0 {
			request := protocol.Stdin{
				Tab:   o.Active.Get(),
				Chunk: protocol.StdinChunk{Data: bytes.Clone(buf[:n])},
			}
			if err := o.Sink.Send(ctx, request); err != nil {
				return fmt.Errorf("send stdin: %w", err)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				o.logger().Debug("input closed")
				return nil
			}
			return fmt.Errorf("read input: %w", readErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (o *Outbound) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}
