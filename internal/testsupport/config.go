package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"tab/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Daemon.DaemonFile = filepath.Join(base, "state", "daemon-pid.yml")
	cfgVal.Daemon.LockFile = filepath.Join(base, "state", "daemon.lock")
	cfgVal.Daemon.Executable = filepath.Join(base, "bin", "tab-daemon-missing")
	cfgVal.Daemon.PollIntervalMS = 5
	cfgVal.Daemon.StartTimeoutSeconds = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return builder.cfg
}

// WithCredential sets the Auth credential on the test config.
func WithCredential(credential string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Client.Credential = credential
	}
}

// WithDefaultTab overrides the tab attached when none is named.
func WithDefaultTab(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Client.DefaultTab = name
	}
}

// WithStartTimeout overrides the bootstrap timeout in seconds.
func WithStartTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Daemon.StartTimeoutSeconds = seconds
	}
}

// WithStubbedDaemonBinary writes a tab-daemon stand-in that publishes the
// descriptor file for a daemon listening on port, then exits. The descriptor
// carries the test process pid so it is never considered stale.
func WithStubbedDaemonBinary(port uint16) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "tab-daemon")
		script := fmt.Sprintf("#!/bin/sh\nprintf 'pid: %d\\nport: %d\\n' > %q.tmp && mv %q.tmp %q\n",
			os.Getpid(), port, b.cfg.Daemon.DaemonFile, b.cfg.Daemon.DaemonFile, b.cfg.Daemon.DaemonFile)
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write stub daemon: %v", err)
		}
		b.cfg.Daemon.Executable = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
