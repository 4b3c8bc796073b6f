package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"tab/internal/daemonfile"
)

// Launcher starts the daemon process. Launch returns once the process has
// been created; it never waits for the daemon to become ready or to exit.
type Launcher interface {
	Launch(ctx context.Context) error
}

// ProcessLauncher starts the daemon as a detached background process.
type ProcessLauncher struct {
	Executable string
	Args       []string
	// Env replaces the inherited environment when non-nil.
	Env []string
}

// Launch starts a detached daemon process in its own session with no stdio
// attached, then releases it so the client never reaps it.
func (l ProcessLauncher) Launch(_ context.Context) error {
	executable := strings.TrimSpace(l.Executable)
	if executable == "" {
		return fmt.Errorf("launch daemon: executable is empty")
	}

	// Not CommandContext: the daemon must outlive this invocation.
	proc := exec.Command(executable, l.Args...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	proc.Stdin = nil
	proc.Stdout = nil
	proc.Stderr = nil
	if l.Env != nil {
		proc.Env = l.Env
	}
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon %q: %w", executable, err)
	}
	return proc.Process.Release()
}

// ProcessAlive reports whether a process with the given pid exists.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// DaemonState summarizes what the descriptor file says about the daemon.
type DaemonState string

const (
	DaemonRunning   DaemonState = "running"
	DaemonStale     DaemonState = "stale"
	DaemonAbsent    DaemonState = "absent"
	DaemonMalformed DaemonState = "malformed"
)

// Status captures the daemon state observed through its descriptor file.
type Status struct {
	State DaemonState
	PID   int
	Port  uint16
	Path  string
	// Detail carries the parse error for malformed files.
	Detail string
}

// Inspect reads the descriptor file without launching anything. alive may be
// nil, in which case ProcessAlive is used.
func Inspect(path string, alive func(int) bool) (Status, error) {
	if alive == nil {
		alive = ProcessAlive
	}
	status := Status{State: DaemonAbsent, Path: path}
	file, err := daemonfile.Load(path)
	if err != nil {
		if errors.Is(err, daemonfile.ErrMalformed) {
			status.State = DaemonMalformed
			status.Detail = err.Error()
			return status, nil
		}
		return status, err
	}
	if file == nil {
		return status, nil
	}
	status.PID = file.PID
	status.Port = file.Port
	if file.PID > 0 && !alive(file.PID) {
		status.State = DaemonStale
		return status, nil
	}
	status.State = DaemonRunning
	return status, nil
}
