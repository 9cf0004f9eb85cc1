package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sermonbench/internal/config"
)

func TestLoadDefaultsRequireRemoteHost(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error when remote.host is unset")
	}
	if !strings.Contains(err.Error(), "remote.host") {
		t.Fatalf("expected remote.host error, got: %v", err)
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "http://uploader.local:8000/"

[remote]
host = "ridgepoint.local"
user = "gaius"
private_key = "~/.ssh/id_test"

[logging]
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.API.BaseURL != "http://uploader.local:8000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.Remote.Port != 22 {
		t.Fatalf("expected default port 22, got %d", cfg.Remote.Port)
	}
	if want := filepath.Join(tempHome, ".ssh", "id_test"); cfg.Remote.PrivateKey != want {
		t.Fatalf("expected expanded key path %q, got %q", want, cfg.Remote.PrivateKey)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased level, got %q", cfg.Logging.Level)
	}
	if cfg.Testing.MaxConcurrentUploads != 5 {
		t.Fatalf("expected default concurrency 5, got %d", cfg.Testing.MaxConcurrentUploads)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Logging.LogDir, cfg.Report.OutputDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadWebhookFromEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/token")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[remote]
host = "ridgepoint.local"
user = "gaius"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.DiscordWebhook != "https://discord.com/api/webhooks/1/token" {
		t.Fatalf("expected webhook from env, got %q", cfg.Notifications.DiscordWebhook)
	}
}

func TestValidateScenarioRejectsBadPattern(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[remote]
host = "ridgepoint.local"
user = "gaius"

[[scenario]]
name = "Broken"
file_count = 3
duration_minutes = 5
pattern = "burst"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error for unknown pattern")
	}
	if !strings.Contains(err.Error(), "pattern") {
		t.Fatalf("expected pattern error, got: %v", err)
	}
}

func TestValidateScenarioRejectsBadUploadMethod(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[remote]
host = "ridgepoint.local"
user = "gaius"

[[scenario]]
name = "Broken"
file_count = 3
duration_minutes = 5
upload_method = "carrier-pigeon"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error for unknown upload method")
	}
	if !strings.Contains(err.Error(), "upload_method") {
		t.Fatalf("expected upload_method error, got: %v", err)
	}
}

func TestValidateScenarioRejectsDuplicateNames(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[remote]
host = "ridgepoint.local"
user = "gaius"

[[scenario]]
name = "Repeat"
file_count = 3
duration_minutes = 5

[[scenario]]
name = "repeat"
file_count = 2
duration_minutes = 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error for duplicate scenario names")
	}
	if !strings.Contains(err.Error(), "twice") {
		t.Fatalf("expected duplicate error, got: %v", err)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[remote]") {
		t.Fatal("expected sample to contain a [remote] section")
	}
}
