package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"tab/internal/daemonfile"
	"tab/internal/logging"
)

const (
	// DefaultPollInterval is how often the descriptor file is checked while
	// the daemon starts.
	DefaultPollInterval = 25 * time.Millisecond
	// DefaultStartTimeout bounds the wait for a freshly launched daemon.
	DefaultStartTimeout = 10 * time.Second
)

// ErrDaemonStartTimeout is returned when the descriptor file does not appear
// within the start timeout.
var ErrDaemonStartTimeout = errors.New("daemon failed to start")

// State is a bootstrap state.
type State int

const (
	StateNoDaemon State = iota
	StateStarting
	StateReady
)

func (s State) String() string {
	switch s {
	case StateNoDaemon:
		return "no_daemon"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a bootstrap.
type Options struct {
	// DaemonFile is the descriptor file the daemon writes when ready.
	DaemonFile string
	// LockFile guards the launch so concurrent clients start one daemon.
	// Empty disables the guard.
	LockFile     string
	Launcher     Launcher
	PollInterval time.Duration
	StartTimeout time.Duration
	Logger       *slog.Logger
	// ProcessAlive overrides the pid liveness check used to detect stale
	// descriptor files.
	ProcessAlive func(pid int) bool
	// OnTransition observes state changes.
	OnTransition func(from, to State)
}

// Result describes a successful bootstrap.
type Result struct {
	State    State
	Launched bool
	File     daemonfile.File
}

// Address returns the address to dial.
func (r Result) Address() string {
	return r.File.Address()
}

// Bootstrap finds a running daemon or launches one.
type Bootstrap struct {
	opts   Options
	logger *slog.Logger
	state  State
}

// New validates opts and returns a bootstrap in the NoDaemon state.
func New(opts Options) (*Bootstrap, error) {
	if strings.TrimSpace(opts.DaemonFile) == "" {
		return nil, errors.New("bootstrap requires a daemon file path")
	}
	if opts.Launcher == nil {
		return nil, errors.New("bootstrap requires a launcher")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = DefaultStartTimeout
	}
	if opts.ProcessAlive == nil {
		opts.ProcessAlive = ProcessAlive
	}
	return &Bootstrap{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "bootstrap"),
		state:  StateNoDaemon,
	}, nil
}

// EnsureRunning is a convenience wrapper around New and Ensure.
func EnsureRunning(ctx context.Context, opts Options) (Result, error) {
	b, err := New(opts)
	if err != nil {
		return Result{}, err
	}
	return b.Ensure(ctx)
}

// State returns the current state.
func (b *Bootstrap) State() State {
	return b.state
}

// Ensure drives the bootstrap to Ready. If the descriptor file already names
// a live daemon no process is launched. Otherwise the caller that wins the
// launch lock starts the daemon and every caller polls for the descriptor
// file until it appears or the start timeout elapses.
func (b *Bootstrap) Ensure(ctx context.Context) (Result, error) {
	if file := b.readReady(); file != nil {
		b.transition(StateReady)
		b.logger.Debug("daemon already running",
			logging.Int(logging.FieldPID, file.PID),
			logging.Int(logging.FieldPort, int(file.Port)),
		)
		return Result{State: StateReady, File: *file}, nil
	}

	launched, release, err := b.claimAndLaunch(ctx)
	if release != nil {
		defer release()
	}
	if err != nil {
		return Result{}, err
	}

	b.transition(StateStarting)
	file, err := b.waitReady(ctx)
	if err != nil {
		return Result{}, err
	}
	b.transition(StateReady)
	b.logger.Info("daemon ready",
		logging.Int(logging.FieldPID, file.PID),
		logging.Int(logging.FieldPort, int(file.Port)),
		logging.Bool("launched", launched),
	)
	return Result{State: StateReady, Launched: launched, File: *file}, nil
}

// claimAndLaunch takes the launch lock and starts the daemon. launched is
// false when another caller holds the lock or the daemon became ready while
// claiming. release must be called once the wait for readiness is over.
func (b *Bootstrap) claimAndLaunch(ctx context.Context) (launched bool, release func(), err error) {
	if b.opts.LockFile == "" {
		if err := b.launch(ctx); err != nil {
			return false, nil, err
		}
		return true, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(b.opts.LockFile), 0o755); err != nil {
		return false, nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(b.opts.LockFile)
	claimed, err := lock.TryLock()
	if err != nil {
		return false, nil, fmt.Errorf("acquire launch lock: %w", err)
	}
	if !claimed {
		b.logger.Debug("another client is starting the daemon", logging.String("lock", b.opts.LockFile))
		return false, nil, nil
	}
	release = func() {
		if err := lock.Unlock(); err != nil {
			b.logger.Warn("failed to release launch lock", logging.Error(err))
		}
	}
	if b.readReady() != nil {
		return false, release, nil
	}
	if err := b.launch(ctx); err != nil {
		return false, release, err
	}
	return true, release, nil
}

func (b *Bootstrap) launch(ctx context.Context) error {
	b.logger.Info("starting daemon")
	return b.opts.Launcher.Launch(ctx)
}

func (b *Bootstrap) waitReady(ctx context.Context) (*daemonfile.File, error) {
	deadline := time.NewTimer(b.opts.StartTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(b.opts.PollInterval)
	defer ticker.Stop()

	for {
		if file := b.readReady(); file != nil {
			return file, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("%w: no daemon file at %s after %s", ErrDaemonStartTimeout, b.opts.DaemonFile, b.opts.StartTimeout)
		case <-ticker.C:
		}
	}
}

// readReady returns the descriptor file when it names a live daemon.
// Unreadable, malformed and stale files count as not ready.
func (b *Bootstrap) readReady() *daemonfile.File {
	file, err := daemonfile.Load(b.opts.DaemonFile)
	if err != nil {
		b.logger.Warn("daemon file unreadable", logging.Error(err))
		return nil
	}
	if file == nil {
		return nil
	}
	if file.PID > 0 && !b.opts.ProcessAlive(file.PID) {
		b.logger.Debug("ignoring stale daemon file", logging.Int(logging.FieldPID, file.PID))
		return nil
	}
	return file
}

func (b *Bootstrap) transition(to State) {
	from := b.state
	b.state = to
	if from == to {
		return
	}
	b.logger.Debug("bootstrap transition",
		logging.String("from", from.String()),
		logging.String("to", to.String()),
	)
	if b.opts.OnTransition != nil {
		b.opts.OnTransition(from, to)
	}
}
