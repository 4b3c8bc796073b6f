package wire

import "fmt"

// FrameKind identifies the transport frame type.
type FrameKind uint8

const (
	// FrameBinary carries one encoded message.
	FrameBinary FrameKind = iota + 1
	// FrameClose signals orderly termination. It has no payload.
	FrameClose
	// FrameText is never produced by this package; peers that send one are
	// misbehaving and the frame fails to decode.
	FrameText
)

func (k FrameKind) String() string {
	switch k {
	case FrameBinary:
		return "binary"
	case FrameClose:
		return "close"
	case FrameText:
		return "text"
	default:
		return fmt.Sprintf("frame(%d)", uint8(k))
	}
}

// Frame is a single transport frame.
type Frame struct {
	Kind    FrameKind
	Payload []byte
}

// CloseFrame returns the distinguished close frame.
func CloseFrame() Frame {
	return Frame{Kind: FrameClose}
}

// IsClose reports whether f ends the stream.
func (f Frame) IsClose() bool {
	return f.Kind == FrameClose
}
