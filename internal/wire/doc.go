// Package wire lifts protocol messages into transport frames and back.
//
// A [Frame] is one message on the socket: either a binary data frame carrying
// exactly one encoded message, or a close frame with no payload that ends the
// logical stream. [Codec] pairs the marshal and unmarshal functions of one
// message union so the same generic helpers serve both peers:
//
//	frame, err := wire.Encode(wire.RequestCodec, protocol.ListTabs{})
//	request, err := wire.Decode(wire.RequestCodec, frame)
//
// [EncodeOrClose] lets the caller replace a message with a close frame when a
// predicate over the message holds. Decoding a close frame yields [io.EOF].
// Nothing in this package performs I/O.
package wire
