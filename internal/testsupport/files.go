package testsupport

import (
	"os"
	"testing"

	"tab/internal/config"
	"tab/internal/daemonfile"
)

// WriteDaemonFile publishes a descriptor for a daemon on port, owned by the
// test process.
func WriteDaemonFile(t testing.TB, cfg *config.Config, port uint16) {
	t.Helper()
	file := daemonfile.File{PID: os.Getpid(), Port: port}
	if err := daemonfile.Write(cfg.Daemon.DaemonFile, file); err != nil {
		t.Fatalf("write daemon file: %v", err)
	}
}
