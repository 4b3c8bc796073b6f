// Package session connects to the daemon and splits the connection into two
// independent halves.
//
// [Dial] opens the websocket to the daemon and returns a [Conn]. [Split] wraps
// any [FrameConn] into a [Sink] that encodes outgoing messages and a [Stream]
// that decodes incoming ones. The halves share no state: one goroutine may
// drive the sink while another drives the stream, because the transport is
// full duplex.
//
// Orderly shutdown is a close frame. Once the sink writes one, further sends
// fail with [ErrSinkClosed]; once the stream reads one, Next returns [io.EOF].
//
// [Pipe] provides an in-memory FrameConn pair with the same semantics for
// tests and in-process peers.
package session
