package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeCLIConfig(t *testing.T, extra string) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[api]
base_url = "http://127.0.0.1:1"
retry_attempts = 0

[remote]
host = "recorder.test"
user = "tester"

[testing]
cooldown_seconds = 0

[report]
output_dir = %q

[logging]
log_dir = %q
`, filepath.Join(base, "reports"), filepath.Join(base, "logs"))
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content+extra), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestConfigInitValidateAndShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, _, err := runCLI(t, []string{"config", "init"}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	out, _, err = runCLI(t, []string{"config", "validate"}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, []string{"config", "show"}, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "ridgepoint.local")
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestScenariosListsMergedSet(t *testing.T) {
	cfgPath := writeCLIConfig(t, `
[[scenario]]
name = "midweek-trickle"
description = "A handful of files over half an hour"
file_count = 6
concurrent_uploads = 2
duration_minutes = 30
pattern = "staggered"
size_preference = "medium"
`)

	out, _, err := runCLI(t, []string{"scenarios"}, cfgPath)
	if err != nil {
		t.Fatalf("scenarios: %v", err)
	}
	requireContains(t, out, "sunday-immediate-rush")
	requireContains(t, out, "sunday-peak-load")
	requireContains(t, out, "midweek-trickle")
	requireContains(t, out, "interruptions")
}

func TestHistoryEmpty(t *testing.T) {
	cfgPath := writeCLIConfig(t, "")

	out, _, err := runCLI(t, []string{"history"}, cfgPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded yet")
}

func TestRunRejectsUnknownScenario(t *testing.T) {
	cfgPath := writeCLIConfig(t, "")

	_, _, err := runCLI(t, []string{"run", "no-such-scenario"}, cfgPath)
	if err == nil || !strings.Contains(err.Error(), "unknown scenario") {
		t.Fatalf("expected unknown scenario error, got %v", err)
	}
}

func TestRunFailsWhenAPIUnreachable(t *testing.T) {
	cfgPath := writeCLIConfig(t, "")

	_, _, err := runCLI(t, []string{"run", "sunday-peak-load"}, cfgPath)
	if err == nil || !strings.Contains(err.Error(), "health check failed") {
		t.Fatalf("expected health check failure, got %v", err)
	}
}

func TestNotifyTestWithoutWebhook(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK_URL", "")
	cfgPath := writeCLIConfig(t, "")

	out, _, err := runCLI(t, []string{"test-notify"}, cfgPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "No Discord webhook configured")
}
