package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDaemon(); err != nil {
		return err
	}
	c.normalizeClient()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDaemon() error {
	c.Daemon.Executable = strings.TrimSpace(c.Daemon.Executable)
	if c.Daemon.Executable == "" {
		c.Daemon.Executable = defaultDaemonExecutable
	}
	if c.Daemon.PollIntervalMS == 0 {
		c.Daemon.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Daemon.StartTimeoutSeconds == 0 {
		c.Daemon.StartTimeoutSeconds = defaultStartTimeoutSeconds
	}

	var err error
	if strings.TrimSpace(c.Daemon.DaemonFile) == "" {
		c.Daemon.DaemonFile = filepath.Join(c.Paths.StateDir, defaultDaemonFileName)
	}
	if c.Daemon.DaemonFile, err = expandPath(c.Daemon.DaemonFile); err != nil {
		return fmt.Errorf("daemon.daemon_file: %w", err)
	}
	if strings.TrimSpace(c.Daemon.LockFile) == "" {
		c.Daemon.LockFile = filepath.Join(c.Paths.StateDir, defaultLockFileName)
	}
	if c.Daemon.LockFile, err = expandPath(c.Daemon.LockFile); err != nil {
		return fmt.Errorf("daemon.lock_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeClient() {
	c.Client.DefaultTab = strings.TrimSpace(c.Client.DefaultTab)
	if c.Client.DefaultTab == "" {
		c.Client.DefaultTab = defaultTab
	}
	if c.Client.Credential == "" {
		if value, ok := os.LookupEnv(CredentialEnv); ok {
			c.Client.Credential = value
		}
	}
	if c.Client.StdinBufferSize == 0 {
		c.Client.StdinBufferSize = defaultStdinBufferSize
	}
	if c.Client.MaxMessageBytes == 0 {
		c.Client.MaxMessageBytes = defaultMaxMessageBytes
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
