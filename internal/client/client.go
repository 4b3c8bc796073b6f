package client

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"tab/internal/logging"
	"tab/internal/protocol"
	"tab/internal/session"
	"tab/internal/wire"
)

// ErrNoTabList is returned when the daemon closes before answering ListTabs.
var ErrNoTabList = errors.New("daemon closed before sending the tab list")

// Options configures an attach session.
type Options struct {
	Credential []byte
	TabName    string
	BufferSize int
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
}

// Attach runs a full session on conn: the outbound side in its own goroutine
// and the inbound side until the daemon closes the stream. End of input only
// stops forwarding. Attach returns nil when the daemon closes the session.
func Attach(ctx context.Context, conn session.FrameConn, opts Options) error {
	logger := logging.NewComponentLogger(opts.Logger, "client")
	sink, stream := session.Split(conn, wire.RequestCodec, wire.ResponseCodec, nil)
	active := &ActiveTab{}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outbound := &Outbound{
		Sink:       sink,
		Input:      opts.Stdin,
		Active:     active,
		BufferSize: opts.BufferSize,
		Logger:     logger,
	}
	inbound := &Inbound{
		Stream:  stream,
		Stdout:  opts.Stdout,
		Stderr:  opts.Stderr,
		Active:  active,
		TabName: opts.TabName,
		Logger:  logger,
	}

	outDone := make(chan error, 1)
	go func() { outDone <- outbound.Run(ctx, opts.Credential, opts.TabName) }()
	inDone := make(chan error, 1)
	go func() { inDone <- inbound.Run(ctx) }()

	logger.Info("attached", logging.String(logging.FieldTabName, opts.TabName))
	for {
		select {
		case err := <-inDone:
			if err != nil {
				logger.Error("inbound failed", logging.Error(err))
			} else {
				logger.Info("session closed")
			}
			return err
		case err := <-outDone:
			if err != nil {
				logger.Error("outbound failed", logging.Error(err))
				return err
			}
			outDone = nil
		}
	}
}

// ListTabs authenticates, requests the tab list, and closes the session once
// the first TabList arrives. Output chunks received meanwhile are discarded.
func ListTabs(ctx context.Context, conn session.FrameConn, credential []byte, logger *slog.Logger) ([]protocol.TabMetadata, error) {
	logger = logging.NewComponentLogger(logger, "client")
	sink, stream := session.Split(conn, wire.RequestCodec, wire.ResponseCodec, nil)

	if credential == nil {
		credential = []byte{}
	}
	for _, request := range []protocol.Request{protocol.Auth{Credential: credential}, protocol.ListTabs{}} {
		if err := sink.Send(ctx, request); err != nil {
			return nil, err
		}
	}

	var (
		tabs     []protocol.TabMetadata
		received bool
	)
	inbound := &Inbound{
		Stream: stream,
		Logger: logger,
		OnTabList: func(list []protocol.TabMetadata) bool {
			tabs = list
			received = true
			return true
		},
	}
	if err := inbound.Run(ctx); err != nil {
		return nil, err
	}
	if !received {
		return nil, ErrNoTabList
	}
	if err := sink.Close(ctx); err != nil {
		logger.Debug("close after tab list", logging.Error(err))
	}
	return tabs, nil
}
