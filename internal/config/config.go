package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// API contains settings for the sermon uploader API under test.
type API struct {
	BaseURL        string `toml:"base_url"`
	ConnectTimeout int    `toml:"connect_timeout"`
	RequestTimeout int    `toml:"request_timeout"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// Remote contains settings for the recording host holding the test WAV files.
type Remote struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	User        string `toml:"user"`
	PrivateKey  string `toml:"private_key"`
	RootDir     string `toml:"root_dir"`
	SessionPool int    `toml:"session_pool"`
	DialTimeout int    `toml:"dial_timeout"`
}

// Testing contains scheduling and pass/fail thresholds for scenario runs.
type Testing struct {
	MaxConcurrentUploads int     `toml:"max_concurrent_uploads"`
	SubmitStaggerMS      int     `toml:"submit_stagger_ms"`
	CooldownSeconds      int     `toml:"cooldown_seconds"`
	MinSuccessRate       float64 `toml:"min_success_rate"`
	MinThroughputMBps    float64 `toml:"min_throughput_mbps"`
}

// Notifications contains configuration for the Discord live progress message.
type Notifications struct {
	DiscordWebhook string `toml:"discord_webhook"`
	RequestTimeout int    `toml:"request_timeout"`
	RetentionHours int    `toml:"retention_hours"`
}

// Report contains configuration for persisted run reports.
type Report struct {
	OutputDir string `toml:"output_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	LogDir string `toml:"log_dir"`
}

// Scenario describes a user-defined stress scenario loaded from config.
// Built-in scenarios live in the scenario package; entries here extend them.
type Scenario struct {
	Name                  string `toml:"name"`
	Description           string `toml:"description"`
	FileCount             int    `toml:"file_count"`
	ConcurrentUploads     int    `toml:"concurrent_uploads"`
	DurationMinutes       int    `toml:"duration_minutes"`
	Pattern               string `toml:"pattern"`
	SizePreference        string `toml:"size_preference"`
	SimulateInterruptions bool   `toml:"simulate_interruptions"`
	NetworkDelayMS        int    `toml:"network_delay_ms"`
	UploadMethod          string `toml:"upload_method"`
	CheckDuplicates       bool   `toml:"check_duplicates"`
}

// Config encapsulates all configuration values for sermonbench.
//
// Configuration sections by subsystem:
//   - API: upload API endpoint, timeouts, and retry budget
//   - Remote: SSH/SFTP access to the recording host
//   - Testing: concurrency limits and pass/fail thresholds
//   - Notifications: Discord live progress webhook
//   - Report: persisted JSON report location
//   - Logging: log format, level, and directory
//   - Scenarios: additional user-defined stress scenarios
type Config struct {
	API           API           `toml:"api"`
	Remote        Remote        `toml:"remote"`
	Testing       Testing       `toml:"testing"`
	Notifications Notifications `toml:"notifications"`
	Report        Report        `toml:"report"`
	Logging       Logging       `toml:"logging"`
	Scenarios     []Scenario    `toml:"scenario"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sermonbench/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sermonbench.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs before it starts.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Logging.LogDir, c.Report.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryDBPath returns the location of the run history database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Logging.LogDir, "history.db")
}

// LockPath returns the location of the single-instance run lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Logging.LogDir, "sermonbench.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
