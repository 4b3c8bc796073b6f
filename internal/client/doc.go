// Package client drives a terminal session against the tab daemon.
//
// A session runs two independent directions over one connection. The
// outbound side sends the handshake (Auth, ListTabs, CreateTab) and then
// forwards local input as Stdin requests addressed to the active tab. The
// inbound side writes Chunk responses to stdout or stderr by channel and
// tracks which tab the daemon created for us. Neither direction waits for
// the other.
package client
