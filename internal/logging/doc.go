// Package logging assembles structured slog loggers for the tab client.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// correlation id carried through a context so every record from one CLI
// invocation can be grouped. The CLI logger writes to a file because stdout
// and stderr carry the attached tab's output. A no-op logger serves tests and
// wiring code that cannot fail.
package logging
