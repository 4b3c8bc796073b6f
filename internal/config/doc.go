// Package config loads, normalizes, and validates tab configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the TAB_CREDENTIAL environment
// fallback. The descriptor and lock file locations default to files inside
// the state directory, so relocating state_dir moves the whole rendezvous.
//
// Always obtain settings through this package so the CLI and bootstrap agree
// on where the daemon publishes its port.
package config
