package protocol

// Response is a message sent from the daemon to the client.
type Response interface {
	responseTag() uint8
}

const (
	tagChunk uint8 = iota
	tagTabUpdate
	tagTabList
)

// ChunkResponse carries output from one channel of a tab.
type ChunkResponse struct {
	Tab   TabID `cbor:"1,keyasint"`
	Chunk Chunk `cbor:"2,keyasint"`
}

// TabUpdate reports a created or changed tab.
type TabUpdate struct {
	Tab TabMetadata `cbor:"1,keyasint"`
}

// TabList answers a ListTabs request.
type TabList struct {
	Tabs []TabMetadata `cbor:"1,keyasint"`
}

func (ChunkResponse) responseTag() uint8 { return tagChunk }
func (TabUpdate) responseTag() uint8     { return tagTabUpdate }
func (TabList) responseTag() uint8       { return tagTabList }

// ResponseName returns a short label for logging.
func ResponseName(response Response) string {
	switch response.(type) {
	case ChunkResponse:
		return "chunk"
	case TabUpdate:
		return "tab_update"
	case TabList:
		return "tab_list"
	case nil:
		return "nil"
	default:
		return "unknown"
	}
}
