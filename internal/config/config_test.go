package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[paths]
input_dir = "/tmp/in"
output_dir = "/tmp/out"

[ai]
api_key = "test-key"
`)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Errorf("resolved path mismatch: got %q, want %q", resolved, path)
	}
	if cfg.AI.BaseURL != defaultAIBaseURL {
		t.Errorf("ai.base_url default not applied: got %q", cfg.AI.BaseURL)
	}
	if cfg.AI.TimeoutSeconds != defaultAITimeoutSeconds {
		t.Errorf("ai.timeout_seconds default not applied: got %d", cfg.AI.TimeoutSeconds)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Errorf("logging defaults not applied: %+v", cfg.Logging)
	}
	if !cfg.Organize.WriteSidecar {
		t.Error("organize.write_sidecar should default to true")
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	path := writeConfig(t, `
[paths]
input_dir = "/tmp/in"
output_dir = "/tmp/out"
`)

	_, _, _, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing ai.api_key")
	}
	if !strings.Contains(err.Error(), "ai.api_key") {
		t.Errorf("error should mention ai.api_key: %v", err)
	}
}

func TestLoadRejectsSameInputOutput(t *testing.T) {
	path := writeConfig(t, `
[paths]
input_dir = "/tmp/same"
output_dir = "/tmp/same"

[ai]
api_key = "test-key"
`)

	_, _, _, err := Load(path)
	if err == nil {
		t.Fatal("expected error when input_dir equals output_dir")
	}
}

func TestLoadRejectsBadLogging(t *testing.T) {
	path := writeConfig(t, `
[paths]
input_dir = "/tmp/in"
output_dir = "/tmp/out"

[ai]
api_key = "test-key"

[logging]
format = "xml"
`)

	_, _, _, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unsupported logging format")
	}
}

func TestStatePaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.StateDir = "/var/lib/shelfsort"

	if got := cfg.TrackerPath(); got != "/var/lib/shelfsort/tracker.json" {
		t.Errorf("TrackerPath: got %q", got)
	}
	if got := cfg.LockPath(); got != "/var/lib/shelfsort/shelfsort.lock" {
		t.Errorf("LockPath: got %q", got)
	}
	if got := cfg.HistoryPath(); got != "/var/lib/shelfsort/history.db" {
		t.Errorf("HistoryPath: got %q", got)
	}

	cfg.History.Path = "/elsewhere/journal.db"
	if got := cfg.HistoryPath(); got != "/elsewhere/journal.db" {
		t.Errorf("HistoryPath override: got %q", got)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Error("sample config missing [paths] section")
	}
}
