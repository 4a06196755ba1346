package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"shelfsort/internal/config"
	"shelfsort/internal/testsupport"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeConfigFile(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "shelfsort.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func quietConfig(t *testing.T, opts ...testsupport.ConfigOption) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	return cfg
}

func newMetadataServer(t *testing.T, document string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": document}},
			},
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunCommandOrganizesLibrary(t *testing.T) {
	server := newMetadataServer(t,
		`{"author":{"first":"Jane","last":"Austen"},"title":{"main":"Emma"},"confidence":{"title":"high"}}`)
	cfg := quietConfig(t, testsupport.WithResolverURL(server.URL))
	testsupport.SeedBook(t, cfg.Paths.InputDir, "Author/BookA", "chapter1.mp3", "cover.jpg")
	configPath := writeConfigFile(t, cfg)

	output, err := executeCommand(t, "run", "--config", configPath)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "1 organized") {
		t.Errorf("summary missing: %s", output)
	}
	for _, name := range []string{"chapter1.mp3", "cover.jpg"} {
		target := filepath.Join(cfg.Paths.OutputDir, "Austen, Jane", "Emma", name)
		if _, err := os.Stat(target); err != nil {
			t.Errorf("expected organized file %s: %v", target, err)
		}
	}
}

func TestRunCommandDryRun(t *testing.T) {
	server := newMetadataServer(t,
		`{"title":"Emma","confidence":{"title":"very_high"}}`)
	cfg := quietConfig(t, testsupport.WithResolverURL(server.URL))
	testsupport.SeedBook(t, cfg.Paths.InputDir, "BookA", "chapter1.mp3")
	configPath := writeConfigFile(t, cfg)

	output, err := executeCommand(t, "run", "--dry-run", "--config", configPath)
	if err != nil {
		t.Fatalf("dry run failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Dry run") {
		t.Errorf("dry-run notice missing: %s", output)
	}

	entries, err := os.ReadDir(cfg.Paths.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run must not write output: %v", entries)
	}
	if _, err := os.Stat(cfg.TrackerPath()); !os.IsNotExist(err) {
		t.Error("dry run must not create the tracker")
	}
}

func TestScanCommandListsFolders(t *testing.T) {
	cfg := quietConfig(t)
	testsupport.SeedBook(t, cfg.Paths.InputDir, "Author/BookA", "chapter1.mp3")
	testsupport.SeedBook(t, cfg.Paths.InputDir, "Author/BookB", "notes.txt")
	configPath := writeConfigFile(t, cfg)

	output, err := executeCommand(t, "scan", "--config", configPath)
	if err != nil {
		t.Fatalf("scan failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Author/BookA") {
		t.Errorf("audio folder missing from scan output: %s", output)
	}
	if strings.Contains(output, "Author/BookB") {
		t.Errorf("folder without audio listed: %s", output)
	}
}

func TestTrackerClearRequiresConfirmation(t *testing.T) {
	cfg := quietConfig(t)
	configPath := writeConfigFile(t, cfg)

	if _, err := executeCommand(t, "tracker", "clear", "--config", configPath); err == nil {
		t.Fatal("clear without --yes must fail")
	}

	output, err := executeCommand(t, "tracker", "clear", "--yes", "--config", configPath)
	if err != nil {
		t.Fatalf("clear --yes failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Removed 0") {
		t.Errorf("clear output: %s", output)
	}
}

func TestTrackerListEmpty(t *testing.T) {
	cfg := quietConfig(t)
	configPath := writeConfigFile(t, cfg)

	output, err := executeCommand(t, "tracker", "list", "--config", configPath)
	if err != nil {
		t.Fatalf("tracker list failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Tracker is empty") {
		t.Errorf("tracker list output: %s", output)
	}
}

func TestHistoryCommandAfterRun(t *testing.T) {
	server := newMetadataServer(t,
		`{"title":"Emma","confidence":{"title":"high"}}`)
	cfg := quietConfig(t, testsupport.WithResolverURL(server.URL), testsupport.WithHistory())
	testsupport.SeedBook(t, cfg.Paths.InputDir, "BookA", "chapter1.mp3")
	configPath := writeConfigFile(t, cfg)

	if output, err := executeCommand(t, "run", "--config", configPath); err != nil {
		t.Fatalf("run failed: %v\n%s", err, output)
	}

	output, err := executeCommand(t, "history", "--config", configPath)
	if err != nil {
		t.Fatalf("history failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Run") || strings.Contains(output, "No runs recorded") {
		t.Errorf("history output: %s", output)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := executeCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	// A second init without --overwrite refuses to clobber the file.
	if _, err := executeCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("init over existing file must fail without --overwrite")
	}

	cfg := quietConfig(t)
	configPath := writeConfigFile(t, cfg)
	output, err = executeCommand(t, "config", "show", "--config", configPath)
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "[paths]") {
		t.Errorf("config show output: %s", output)
	}
	if !strings.Contains(output, "<redacted>") {
		t.Errorf("api key must be redacted: %s", output)
	}
}

func TestRootCommandShowsHelp(t *testing.T) {
	output, err := executeCommand(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, sub := range []string{"run", "scan", "status", "tracker", "history", "config"} {
		if !strings.Contains(output, sub) {
			t.Errorf("help missing subcommand %q:\n%s", sub, output)
		}
	}
}
