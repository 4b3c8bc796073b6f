package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tab/internal/config"
	"tab/internal/daemonctl"
	"tab/internal/logging"
	"tab/internal/session"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce    sync.Once
	logger        *slog.Logger
	loggerErr     error
	correlationID string
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		correlationID: uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger.With(logging.String(logging.FieldCorrelationID, c.correlationID))
	})
	return c.logger, c.loggerErr
}

// commandCtx returns the command's context tagged with the invocation's
// correlation id.
func (c *commandContext) commandCtx(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithCorrelationID(ctx, c.correlationID)
}

// connect bootstraps the daemon and dials it.
func (c *commandContext) connect(ctx context.Context) (*session.Conn, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	result, err := daemonctl.EnsureRunning(ctx, daemonctl.Options{
		DaemonFile: cfg.Daemon.DaemonFile,
		LockFile:   cfg.Daemon.LockFile,
		Launcher: daemonctl.ProcessLauncher{
			Executable: cfg.Daemon.Executable,
			Args:       cfg.Daemon.Args,
		},
		PollInterval: cfg.PollInterval(),
		StartTimeout: cfg.StartTimeout(),
		Logger:       logger,
	})
	if err != nil {
		return nil, wrapBootstrapError(err, cfg)
	}

	conn, err := session.Dial(ctx, result.Address(), session.DialOptions{MaxMessageSize: cfg.Client.MaxMessageBytes})
	if err != nil {
		return nil, wrapDialError(err, result.Address())
	}
	logger.Debug("connected to daemon", logging.String("address", result.Address()))
	return conn, nil
}

func (c *commandContext) tabNames(cmd *cobra.Command) ([]string, error) {
	tabs, err := c.listTabs(cmd)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		names = append(names, tab.Name)
	}
	return names, nil
}

func wrapBootstrapError(err error, cfg *config.Config) error {
	switch {
	case errors.Is(err, daemonctl.ErrDaemonStartTimeout):
		return fmt.Errorf("%w; check that %s starts and writes %s", err, cfg.Daemon.Executable, cfg.Daemon.DaemonFile)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("start daemon: %w", err)
	}
}

func wrapDialError(err error, address string) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon: %s refused the connection; the daemon file may be stale", address)
	}
	return fmt.Errorf("connect to daemon: %w", err)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
