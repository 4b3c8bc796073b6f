package wire

import (
	"fmt"
	"io"

	"tab/internal/protocol"
)

// Codec converts one message union to and from frame payloads.
type Codec[T any] struct {
	Name      string
	Marshal   func(T) ([]byte, error)
	Unmarshal func([]byte) (T, error)
}

// RequestCodec encodes client to daemon messages.
var RequestCodec = Codec[protocol.Request]{
	Name:      "request",
	Marshal:   protocol.MarshalRequest,
	Unmarshal: protocol.UnmarshalRequest,
}

// ResponseCodec encodes daemon to client messages.
var ResponseCodec = Codec[protocol.Response]{
	Name:      "response",
	Marshal:   protocol.MarshalResponse,
	Unmarshal: protocol.UnmarshalResponse,
}

// Encode serializes message into a binary frame. An error means the value
// cannot be represented at all, which well-formed messages never hit.
func Encode[T any](codec Codec[T], message T) (Frame, error) {
	payload, err := codec.Marshal(message)
	if err != nil {
		return Frame{}, fmt.Errorf("encode %s: %w", codec.Name, err)
	}
	return Frame{Kind: FrameBinary, Payload: payload}, nil
}

// EncodeOrClose returns the close frame when closeWhen reports true for
// message, and the encoded binary frame otherwise. A nil predicate never
// closes.
func EncodeOrClose[T any](codec Codec[T], message T, closeWhen func(T) bool) (Frame, error) {
	if closeWhen != nil && closeWhen(message) {
		return CloseFrame(), nil
	}
	return Encode(codec, message)
}

// Decode deserializes a frame. A close frame returns io.EOF; any frame that
// does not carry a valid message returns a *protocol.DecodeError.
func Decode[T any](codec Codec[T], frame Frame) (T, error) {
	var zero T
	switch frame.Kind {
	case FrameClose:
		return zero, io.EOF
	case FrameBinary:
		return codec.Unmarshal(frame.Payload)
	default:
		return zero, &protocol.DecodeError{
			Message: codec.Name,
			Reason:  fmt.Sprintf("unexpected %s frame", frame.Kind),
		}
	}
}
