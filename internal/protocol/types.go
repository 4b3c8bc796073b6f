package protocol

import "fmt"

// TabID names a tab on the daemon. The daemon assigns it and it stays stable
// for the lifetime of the tab. Clients only reference it.
type TabID uint64

func (id TabID) String() string {
	return fmt.Sprintf("tab-%d", uint64(id))
}

// ChunkType selects the local output stream a chunk is written to.
type ChunkType uint8

const (
	Stdout ChunkType = iota
	Stderr
)

func (c ChunkType) String() string {
	switch c {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

// Chunk is a block of output produced by one channel of a tab.
type Chunk struct {
	Channel ChunkType `cbor:"1,keyasint"`
	Data    []byte    `cbor:"2,keyasint"`
}

// StdinChunk is a block of raw input bytes headed for a tab.
type StdinChunk struct {
	Data []byte `cbor:"1,keyasint"`
}

// TabMetadata describes a tab known to the daemon.
type TabMetadata struct {
	ID   TabID  `cbor:"1,keyasint"`
	Name string `cbor:"2,keyasint"`
	// Dimensions is the terminal size as columns, rows. Zero when the daemon
	// has not reported one yet.
	Dimensions [2]uint16 `cbor:"3,keyasint"`
}

// CreateTabMetadata carries the parameters of a tab creation request.
type CreateTabMetadata struct {
	Name string `cbor:"1,keyasint"`
}
