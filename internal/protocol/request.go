package protocol

// Request is a message sent from the client to the daemon.
type Request interface {
	requestTag() uint8
}

const (
	tagAuth uint8 = iota
	tagListTabs
	tagCreateTab
	tagStdin
)

// Auth presents the client credential. It must be the first request on a
// connection; the payload may be empty.
type Auth struct {
	Credential []byte `cbor:"1,keyasint"`
}

// ListTabs asks the daemon for a TabList response.
type ListTabs struct{}

// CreateTab asks the daemon to create (or reuse) a tab with the given name.
type CreateTab struct {
	Metadata CreateTabMetadata `cbor:"1,keyasint"`
}

// Stdin forwards raw input to a tab.
type Stdin struct {
	Tab   TabID      `cbor:"1,keyasint"`
	Chunk StdinChunk `cbor:"2,keyasint"`
}

func (Auth) requestTag() uint8      { return tagAuth }
func (ListTabs) requestTag() uint8  { return tagListTabs }
func (CreateTab) requestTag() uint8 { return tagCreateTab }
func (Stdin) requestTag() uint8     { return tagStdin }

// RequestName returns a short label for logging.
func RequestName(request Request) string {
	switch request.(type) {
	case Auth:
		return "auth"
	case ListTabs:
		return "list_tabs"
	case CreateTab:
		return "create_tab"
	case Stdin:
		return "stdin"
	case nil:
		return "nil"
	default:
		return "unknown"
	}
}
