package config

const (
	defaultAPIBaseURL        = "http://localhost:8000"
	defaultConnectTimeout    = 30
	defaultRequestTimeout    = 300
	defaultRetryAttempts     = 3
	defaultRemotePort        = 22
	defaultRemoteRootDir     = "/home/gaius/data/sermon-test-wavs"
	defaultRemoteDialTimeout = 15
	defaultMaxConcurrent     = 5
	defaultSubmitStaggerMS   = 100
	defaultCooldownSeconds   = 30
	defaultMinSuccessRate    = 90.0
	defaultNotifyTimeout     = 10
	defaultRetentionHours    = 24
	defaultReportDir         = "~/.local/share/sermonbench/reports"
	defaultLogDir            = "~/.local/share/sermonbench/logs"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultAPIBaseURL,
			ConnectTimeout: defaultConnectTimeout,
			RequestTimeout: defaultRequestTimeout,
			RetryAttempts:  defaultRetryAttempts,
		},
		Remote: Remote{
			Port:        defaultRemotePort,
			RootDir:     defaultRemoteRootDir,
			DialTimeout: defaultRemoteDialTimeout,
		},
		Testing: Testing{
			MaxConcurrentUploads: defaultMaxConcurrent,
			SubmitStaggerMS:      defaultSubmitStaggerMS,
			CooldownSeconds:      defaultCooldownSeconds,
			MinSuccessRate:       defaultMinSuccessRate,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			RetentionHours: defaultRetentionHours,
		},
		Report: Report{
			OutputDir: defaultReportDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			LogDir: defaultLogDir,
		},
	}
}
