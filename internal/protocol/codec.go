package protocol

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ErrNilMessage is returned when a nil Request or Response is marshalled.
// Callers only hit it through a programming error.
var ErrNilMessage = errors.New("protocol: nil message")

// DecodeError reports a frame payload that is not a valid encoding of any
// message variant.
type DecodeError struct {
	// Message names the union being decoded ("request" or "response").
	Message string
	Reason  string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode %s: %s", e.Message, e.Reason)
	}
	return fmt.Sprintf("decode %s: %s: %v", e.Message, e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// envelope is the on-wire shape of every message: [tag, body].
type envelope struct {
	_    struct{} `cbor:",toarray"`
	Tag  uint8
	Body cbor.RawMessage
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encOptions := cbor.CoreDetEncOptions()
	// Nil and empty byte slices share one encoding so a round trip never
	// turns an empty credential into a CBOR null.
	encOptions.NilContainers = cbor.NilContainerAsEmpty
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("protocol: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		MaxNestedLevels:   16,
	}.DecMode()
	if err != nil {
		panic("protocol: CBOR decoder initialization failed: " + err.Error())
	}
}

func marshal(tag uint8, body any) ([]byte, error) {
	raw, err := encMode.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return encMode.Marshal(envelope{Tag: tag, Body: raw})
}

func unmarshalEnvelope(message string, data []byte) (envelope, error) {
	var env envelope
	if len(data) == 0 {
		return env, &DecodeError{Message: message, Reason: "empty frame"}
	}
	if err := decMode.Unmarshal(data, &env); err != nil {
		return env, &DecodeError{Message: message, Reason: "malformed envelope", Err: err}
	}
	if len(env.Body) == 0 {
		return env, &DecodeError{Message: message, Reason: "missing body"}
	}
	return env, nil
}

// nilIfEmpty maps an empty decoded container to nil. Nil and empty share one
// encoding, so decoding always yields the nil form.
func nilIfEmpty[S ~[]E, E any](s S) S {
	if len(s) == 0 {
		return nil
	}
	return s
}

func unmarshalBody(message string, env envelope, v any) error {
	if err := decMode.Unmarshal(env.Body, v); err != nil {
		return &DecodeError{Message: message, Reason: fmt.Sprintf("malformed body for tag %d", env.Tag), Err: err}
	}
	return nil
}

// MarshalRequest encodes a request into a frame payload.
func MarshalRequest(request Request) ([]byte, error) {
	if request == nil {
		return nil, ErrNilMessage
	}
	return marshal(request.requestTag(), request)
}

// UnmarshalRequest decodes a frame payload produced by MarshalRequest.
func UnmarshalRequest(data []byte) (Request, error) {
	const message = "request"
	env, err := unmarshalEnvelope(message, data)
	if err != nil {
		return nil, err
	}
	switch env.Tag {
	case tagAuth:
		var v Auth
		if err := unmarshalBody(message, env, &v); err != nil {
			return nil, err
		}
		v.Credential = nilIfEmpty(v.Credential)
		return v, nil
	case tagListTabs:
		var v ListTabs
		if err := unmarshalBody(message, env, &v); err != nil {
			return nil, err
		}
		return v, nil
	case tagCreateTab:
		var v CreateTab
		if err := unmarshalBody(message, env, &v); err != nil {
			return nil, err
		}
		return v, nil
	case tagStdin:
		var v Stdin
		if err := unmarshalBody(message, env, &v); err != nil {
			return nil, err
		}
		v.Chunk.Data = nilIfEmpty(v.Chunk.Data)
		return v, nil
	default:
		return nil, &DecodeError{Message: message, Reason: fmt.Sprintf("unknown tag %d", env.Tag)}
	}
}

// MarshalResponse encodes a response into a frame payload.
func MarshalResponse(response Response) ([]byte, error) {
	if response == nil {
		return nil, ErrNilMessage
	}
	return marshal(response.responseTag(), response)
}

// UnmarshalResponse decodes a frame payload produced by MarshalResponse.
func UnmarshalResponse(data []byte) (Response, error) {
	const message = "response"
	env, err := unmarshalEnvelope(message, data)
	if err != nil {
		return nil, err
	}
	switch env.Tag {
	case tagChunk:
		var v ChunkResponse
		if err := unmarshalBody(message, env, &v); err != nil {
			return nil, err
		}
		if v.Chunk.Channel != Stdout && v.Chunk.Channel != Stderr {
			return nil, &DecodeError{Message: message, Reason: fmt.Sprintf("unknown chunk channel %d", v.Chunk.Channel)}
		}
		v.Chunk.Data = nilIfEmpty(v.Chunk.Data)
		return v, nil
	case tagTabUpdate:
		var v TabUpdate
		if err := unmarshalBody(message, env, &v); err != nil {
			return nil, err
		}
		return v, nil
	case tagTabList:
		var v TabList
		if err := unmarshalBody(message, env, &v); err != nil {
			return nil, err
		}
		v.Tabs = nilIfEmpty(v.Tabs)
		return v, nil
	default:
		return nil, &DecodeError{Message: message, Reason: fmt.Sprintf("unknown tag %d", env.Tag)}
	}
}
