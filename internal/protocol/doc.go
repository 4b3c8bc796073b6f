// Package protocol defines the messages exchanged between the tab client and
// the tab daemon.
//
// Requests flow client to daemon and responses flow daemon to client. Both are
// closed sum types: [Request] is implemented only by [Auth], [ListTabs],
// [CreateTab] and [Stdin]; [Response] only by [ChunkResponse], [TabUpdate] and
// [TabList]. A type switch over either interface is exhaustive when it names
// every variant.
//
// Each message is carried in exactly one transport frame. The frame payload is
// a CBOR array of two items: the variant tag and the variant body. Bodies use
// small integer map keys so the encoding stays compact and tolerant of field
// reordering. Encoding is Core Deterministic (RFC 8949 §4.2), so the same
// message always produces the same bytes. Nil and empty slices encode
// identically and decode as nil, so a round trip preserves every message whose
// empty slices are nil.
//
//	data, err := protocol.MarshalRequest(protocol.ListTabs{})
//	request, err := protocol.UnmarshalRequest(data)
//
// Malformed, truncated or unknown frames yield a [*DecodeError]; decoding never
// panics on untrusted input.
package protocol
