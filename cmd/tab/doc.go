// Package main hosts the tab CLI entrypoint and command graph.
//
// Running `tab NAME` makes sure a daemon is up, connects to it, and attaches
// the terminal to the named tab until the daemon ends the session. The other
// commands list tabs, feed shell completion, report the daemon descriptor,
// and scaffold configuration.
//
// Earlier releases selected the auxiliary modes with `-c list` and
// `-c _autocomplete-tab`. Those are the `list` and `_autocomplete-tab`
// subcommands now, and `-c` is short for `--config`.
package main
