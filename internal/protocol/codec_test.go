package protocol_test

import (
	"bytes"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"tab/internal/protocol"
)

func sampleRequests() []protocol.Request {
	return []protocol.Request{
		protocol.Auth{Credential: []byte("secret-token")},
		protocol.ListTabs{},
		protocol.CreateTab{Metadata: protocol.CreateTabMetadata{Name: "foo"}},
		protocol.Stdin{Tab: 7, Chunk: protocol.StdinChunk{Data: []byte("ls -la\r")}},
		protocol.Stdin{Tab: 1<<64 - 1, Chunk: protocol.StdinChunk{Data: []byte{0x00, 0x1b, 0xff}}},
		protocol.Stdin{Tab: 2},
		protocol.Auth{},
	}
}

func sampleResponses() []protocol.Response {
	return []protocol.Response{
		protocol.ChunkResponse{Tab: 3, Chunk: protocol.Chunk{Channel: protocol.Stdout, Data: []byte("hello\n")}},
		protocol.ChunkResponse{Tab: 3, Chunk: protocol.Chunk{Channel: protocol.Stderr, Data: []byte("oops\n")}},
		protocol.TabUpdate{Tab: protocol.TabMetadata{ID: 2, Name: "build", Dimensions: [2]uint16{120, 40}}},
		protocol.TabList{Tabs: []protocol.TabMetadata{
			{ID: 0, Name: "foo"},
			{ID: 9, Name: "logs", Dimensions: [2]uint16{80, 24}},
		}},
		protocol.TabList{},
		protocol.ChunkResponse{Tab: 4, Chunk: protocol.Chunk{Channel: protocol.Stdout}},
	}
}

func TestRequestRoundtrip(t *testing.T) {
	for _, original := range sampleRequests() {
		data, err := protocol.MarshalRequest(original)
		if err != nil {
			t.Fatalf("MarshalRequest(%#v): %v", original, err)
		}
		decoded, err := protocol.UnmarshalRequest(data)
		if err != nil {
			t.Fatalf("UnmarshalRequest(%x): %v", data, err)
		}
		if !reflect.DeepEqual(decoded, original) {
			t.Errorf("roundtrip mismatch: got %#v, want %#v", decoded, original)
		}
	}
}

func TestResponseRoundtrip(t *testing.T) {
	for _, original := range sampleResponses() {
		data, err := protocol.MarshalResponse(original)
		if err != nil {
			t.Fatalf("MarshalResponse(%#v): %v", original, err)
		}
		decoded, err := protocol.UnmarshalResponse(data)
		if err != nil {
			t.Fatalf("UnmarshalResponse(%x): %v", data, err)
		}
		if !reflect.DeepEqual(decoded, original) {
			t.Errorf("roundtrip mismatch: got %#v, want %#v", decoded, original)
		}
	}
}

func TestEmptyCredentialRoundtrip(t *testing.T) {
	for _, original := range []protocol.Auth{{}, {Credential: []byte{}}} {
		data, err := protocol.MarshalRequest(original)
		if err != nil {
			t.Fatalf("MarshalRequest: %v", err)
		}
		decoded, err := protocol.UnmarshalRequest(data)
		if err != nil {
			t.Fatalf("UnmarshalRequest: %v", err)
		}
		auth, ok := decoded.(protocol.Auth)
		if !ok {
			t.Fatalf("decoded %T, want protocol.Auth", decoded)
		}
		if len(auth.Credential) != 0 {
			t.Errorf("credential = %x, want empty", auth.Credential)
		}
	}
}

func TestEmptyContainersDecodeAsNil(t *testing.T) {
	data, err := protocol.MarshalResponse(protocol.TabList{Tabs: []protocol.TabMetadata{}})
	if err != nil {
		t.Fatalf("MarshalResponse: %v", err)
	}
	decoded, err := protocol.UnmarshalResponse(data)
	if err != nil {
		t.Fatalf("UnmarshalResponse: %v", err)
	}
	if !reflect.DeepEqual(decoded, protocol.TabList{}) {
		t.Fatalf("decoded %#v, want protocol.TabList{}", decoded)
	}

	data, err = protocol.MarshalRequest(protocol.Stdin{Tab: 1, Chunk: protocol.StdinChunk{Data: []byte{}}})
	if err != nil {
		t.Fatalf("MarshalRequest: %v", err)
	}
	request, err := protocol.UnmarshalRequest(data)
	if err != nil {
		t.Fatalf("UnmarshalRequest: %v", err)
	}
	if !reflect.DeepEqual(request, protocol.Stdin{Tab: 1}) {
		t.Fatalf("decoded %#v, want protocol.Stdin{Tab: 1}", request)
	}
}

func TestNilAndEmptyCredentialEncodeIdentically(t *testing.T) {
	withNil, err := protocol.MarshalRequest(protocol.Auth{})
	if err != nil {
		t.Fatal(err)
	}
	withEmpty, err := protocol.MarshalRequest(protocol.Auth{Credential: []byte{}})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(withNil, withEmpty) {
		t.Errorf("nil credential %x != empty credential %x", withNil, withEmpty)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	message := protocol.TabList{Tabs: []protocol.TabMetadata{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}}
	first, err := protocol.MarshalResponse(message)
	if err != nil {
		t.Fatalf("first MarshalResponse: %v", err)
	}
	second, err := protocol.MarshalResponse(message)
	if err != nil {
		t.Fatalf("second MarshalResponse: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestMarshalNil(t *testing.T) {
	if _, err := protocol.MarshalRequest(nil); !errors.Is(err, protocol.ErrNilMessage) {
		t.Errorf("MarshalRequest(nil) error = %v, want ErrNilMessage", err)
	}
	if _, err := protocol.MarshalResponse(nil); !errors.Is(err, protocol.ErrNilMessage) {
		t.Errorf("MarshalResponse(nil) error = %v, want ErrNilMessage", err)
	}
}

func requireDecodeError(t *testing.T, err error, context string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected decode error, got nil", context)
	}
	var decodeErr *protocol.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("%s: error %v (%T) is not a *protocol.DecodeError", context, err, err)
	}
}

func TestUnmarshalTruncatedFrames(t *testing.T) {
	for _, request := range sampleRequests() {
		data, err := protocol.MarshalRequest(request)
		if err != nil {
			t.Fatal(err)
		}
		for cut := 0; cut < len(data); cut++ {
			_, err := protocol.UnmarshalRequest(data[:cut])
			requireDecodeError(t, err, "truncated request")
		}
	}
	for _, response := range sampleResponses() {
		data, err := protocol.MarshalResponse(response)
		if err != nil {
			t.Fatal(err)
		}
		for cut := 0; cut < len(data); cut++ {
			_, err := protocol.UnmarshalResponse(data[:cut])
			requireDecodeError(t, err, "truncated response")
		}
	}
}

func TestUnmarshalRejectsTrailingData(t *testing.T) {
	data, err := protocol.MarshalRequest(protocol.ListTabs{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := protocol.MarshalRequest(protocol.ListTabs{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = protocol.UnmarshalRequest(append(data, second...))
	requireDecodeError(t, err, "two messages in one frame")
}

func TestUnmarshalInvalidFrames(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "invalid cbor", data: []byte{0xff, 0xfe, 0xfd}},
		{name: "not an array", data: []byte{0x01}},
		{name: "array of one", data: []byte{0x81, 0x00}},
		{name: "array of three", data: []byte{0x83, 0x00, 0xa0, 0xa0}},
		{name: "unknown tag", data: []byte{0x82, 0x18, 0x63, 0xa0}},
		{name: "tag overflows", data: []byte{0x82, 0x19, 0x01, 0x00, 0xa0}},
		{name: "body is not a map", data: []byte{0x82, 0x03, 0x05}},
		{name: "unknown body field", data: []byte{0x82, 0x01, 0xa1, 0x05, 0x01}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := protocol.UnmarshalRequest(tc.data)
			requireDecodeError(t, err, "request")
			_, err = protocol.UnmarshalResponse(tc.data)
			requireDecodeError(t, err, "response")
		})
	}
}

func TestUnmarshalResponseRejectsUnknownChannel(t *testing.T) {
	data, err := protocol.MarshalResponse(protocol.ChunkResponse{
		Tab:   1,
		Chunk: protocol.Chunk{Channel: protocol.ChunkType(7), Data: []byte("x")},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = protocol.UnmarshalResponse(data)
	requireDecodeError(t, err, "unknown channel")
}

func TestUnmarshalRandomBytesNeverPanics(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		buf := make([]byte, rng.Intn(64))
		rng.Read(buf)
		if request, err := protocol.UnmarshalRequest(buf); err == nil && request == nil {
			t.Fatalf("UnmarshalRequest(%x) returned nil request without error", buf)
		}
		if response, err := protocol.UnmarshalResponse(buf); err == nil && response == nil {
			t.Fatalf("UnmarshalResponse(%x) returned nil response without error", buf)
		}
	}
}

func TestRequestAndResponseNames(t *testing.T) {
	wantRequests := []string{"auth", "list_tabs", "create_tab", "stdin", "stdin", "stdin", "auth"}
	for i, request := range sampleRequests() {
		if got := protocol.RequestName(request); got != wantRequests[i] {
			t.Errorf("RequestName(%T) = %q, want %q", request, got, wantRequests[i])
		}
	}
	wantResponses := []string{"chunk", "chunk", "tab_update", "tab_list", "tab_list", "chunk"}
	for i, response := range sampleResponses() {
		if got := protocol.ResponseName(response); got != wantResponses[i] {
			t.Errorf("ResponseName(%T) = %q, want %q", response, got, wantResponses[i])
		}
	}
}

func BenchmarkMarshalStdin(b *testing.B) {
	message := protocol.Stdin{Tab: 1, Chunk: protocol.StdinChunk{Data: bytes.Repeat([]byte{'a'}, 512)}}
	b.ReportAllocs()
	for b.Loop() {
		protocol.MarshalRequest(message)
	}
}
