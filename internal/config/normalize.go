package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeAPI(); err != nil {
		return err
	}
	if err := c.normalizeRemote(); err != nil {
		return err
	}
	c.normalizeTesting()
	c.normalizeNotifications()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeScenarios()
	return nil
}

func (c *Config) normalizeAPI() error {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultAPIBaseURL
	}
	if c.API.ConnectTimeout <= 0 {
		c.API.ConnectTimeout = defaultConnectTimeout
	}
	if c.API.RequestTimeout <= 0 {
		c.API.RequestTimeout = defaultRequestTimeout
	}
	if c.API.RetryAttempts < 0 {
		c.API.RetryAttempts = defaultRetryAttempts
	}
	return nil
}

func (c *Config) normalizeRemote() error {
	c.Remote.Host = strings.TrimSpace(c.Remote.Host)
	c.Remote.User = strings.TrimSpace(c.Remote.User)
	if c.Remote.Port <= 0 {
		c.Remote.Port = defaultRemotePort
	}
	if c.Remote.DialTimeout <= 0 {
		c.Remote.DialTimeout = defaultRemoteDialTimeout
	}
	if strings.TrimSpace(c.Remote.RootDir) == "" {
		c.Remote.RootDir = defaultRemoteRootDir
	}
	if c.Remote.PrivateKey == "" {
		if value, ok := os.LookupEnv("SERMONBENCH_SSH_KEY"); ok {
			c.Remote.PrivateKey = value
		}
	}
	if c.Remote.PrivateKey != "" {
		expanded, err := expandPath(c.Remote.PrivateKey)
		if err != nil {
			return fmt.Errorf("remote.private_key: %w", err)
		}
		c.Remote.PrivateKey = expanded
	}
	return nil
}

func (c *Config) normalizeTesting() {
	if c.Testing.MaxConcurrentUploads <= 0 {
		c.Testing.MaxConcurrentUploads = defaultMaxConcurrent
	}
	if c.Testing.SubmitStaggerMS < 0 {
		c.Testing.SubmitStaggerMS = defaultSubmitStaggerMS
	}
	if c.Testing.CooldownSeconds < 0 {
		c.Testing.CooldownSeconds = 0
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.DiscordWebhook = strings.TrimSpace(c.Notifications.DiscordWebhook)
	if c.Notifications.DiscordWebhook == "" {
		if value, ok := os.LookupEnv("DISCORD_WEBHOOK_URL"); ok {
			c.Notifications.DiscordWebhook = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	if c.Notifications.RetentionHours <= 0 {
		c.Notifications.RetentionHours = defaultRetentionHours
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Report.OutputDir) == "" {
		c.Report.OutputDir = defaultReportDir
	}
	if c.Report.OutputDir, err = expandPath(c.Report.OutputDir); err != nil {
		return fmt.Errorf("report.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Logging.LogDir) == "" {
		c.Logging.LogDir = defaultLogDir
	}
	if c.Logging.LogDir, err = expandPath(c.Logging.LogDir); err != nil {
		return fmt.Errorf("logging.log_dir: %w", err)
	}
	return nil
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

func (c *Config) normalizeScenarios() {
	for i := range c.Scenarios {
		sc := &c.Scenarios[i]
		sc.Name = strings.TrimSpace(sc.Name)
		sc.Pattern = strings.ToLower(strings.TrimSpace(sc.Pattern))
		sc.SizePreference = strings.ToLower(strings.TrimSpace(sc.SizePreference))
		sc.UploadMethod = strings.ToLower(strings.TrimSpace(sc.UploadMethod))
		if sc.Pattern == "" {
			sc.Pattern = "immediate"
		}
		if sc.SizePreference == "" {
			sc.SizePreference = "mixed"
		}
		if sc.ConcurrentUploads <= 0 {
			sc.ConcurrentUploads = c.Testing.MaxConcurrentUploads
		}
	}
}
