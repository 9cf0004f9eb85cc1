package testsupport

import (
	"path/filepath"
	"testing"

	"sermonbench/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.API.BaseURL = "http://127.0.0.1:0"
	cfg.Remote.Host = "recorder.test"
	cfg.Remote.User = "tester"
	cfg.Remote.RootDir = filepath.Join(base, "wavs")
	cfg.Report.OutputDir = filepath.Join(base, "reports")
	cfg.Logging.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithBaseURL points the API client at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.API.BaseURL = url
	}
}

// WithWebhook enables the Discord messenger against a test server.
func WithWebhook(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.DiscordWebhook = url
	}
}

// WithScenario appends a user-defined scenario to the test config.
func WithScenario(s config.Scenario) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scenarios = append(cfg.Scenarios, s)
	}
}
