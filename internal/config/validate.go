package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateClient(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.PollIntervalMS < 0 {
		return errors.New("daemon.poll_interval_ms must be positive")
	}
	if c.Daemon.StartTimeoutSeconds < 0 {
		return errors.New("daemon.start_timeout_seconds must be positive")
	}
	if c.PollInterval() > c.StartTimeout() {
		return fmt.Errorf("daemon.poll_interval_ms (%d) must not exceed daemon.start_timeout_seconds (%d)",
			c.Daemon.PollIntervalMS, c.Daemon.StartTimeoutSeconds)
	}
	if c.Daemon.DaemonFile == c.Daemon.LockFile {
		return errors.New("daemon.lock_file must differ from daemon.daemon_file")
	}
	return nil
}

func (c *Config) validateClient() error {
	if c.Client.StdinBufferSize < 0 {
		return errors.New("client.stdin_buffer_size must be positive")
	}
	if c.Client.MaxMessageBytes < 0 {
		return errors.New("client.max_message_bytes must be positive")
	}
	if int64(c.Client.StdinBufferSize) > c.Client.MaxMessageBytes {
		return fmt.Errorf("client.stdin_buffer_size (%d) must not exceed client.max_message_bytes (%d)",
			c.Client.StdinBufferSize, c.Client.MaxMessageBytes)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
