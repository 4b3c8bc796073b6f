package config

const (
	defaultConfigPath          = "~/.config/tab/config.toml"
	projectConfigName          = "tab.toml"
	logFileName                = "tab.log"
	defaultStateDir            = "~/.tab"
	defaultLogDir              = "~/.tab/logs"
	defaultDaemonFileName      = "daemon-pid.yml"
	defaultLockFileName        = "daemon.lock"
	defaultDaemonExecutable    = "tab-daemon"
	defaultPollIntervalMS      = 25
	defaultStartTimeoutSeconds = 10
	defaultTab                 = "foo"
	defaultStdinBufferSize     = 512
	defaultMaxMessageBytes     = 16 << 20
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"

	// CredentialEnv supplies client.credential when the file leaves it empty.
	CredentialEnv = "TAB_CREDENTIAL"
)

// Default returns a Config populated with repository defaults. Descriptor and
// lock file paths are derived from the state directory during Load.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Daemon: Daemon{
			Executable:          defaultDaemonExecutable,
			PollIntervalMS:      defaultPollIntervalMS,
			StartTimeoutSeconds: defaultStartTimeoutSeconds,
		},
		Client: Client{
			DefaultTab:      defaultTab,
			StdinBufferSize: defaultStdinBufferSize,
			MaxMessageBytes: defaultMaxMessageBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
