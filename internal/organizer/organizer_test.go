package organizer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shelfsort/internal/config"
	"shelfsort/internal/metadata"
	"shelfsort/internal/scanner"
)

func testConfig(t *testing.T, sidecar bool) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Organize.WriteSidecar = sidecar
	return cfg
}

func emmaDocument() metadata.Document {
	return metadata.Document{
		Author: metadata.Author{First: "Jane", Last: "Austen", Structured: true},
		Title:  metadata.Title{Main: "Emma"},
	}
}

func sourceFolder(t *testing.T, files map[string]string) scanner.Record {
	t.Helper()
	dir := t.TempDir()
	names := make([]string, 0, len(files))
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		names = append(names, name)
	}
	return scanner.Record{
		RelPath:  "incoming/" + filepath.Base(dir),
		FullPath: dir,
		Files:    names,
	}
}

func TestOrganizeCopiesIntoAuthorTitleLayout(t *testing.T) {
	cfg := testConfig(t, false)
	record := sourceFolder(t, map[string]string{
		"chapter1.mp3": "audio one",
		"chapter2.mp3": "audio two",
		"cover.jpg":    "image",
	})

	result, err := New(cfg, nil).Organize(context.Background(), record, emmaDocument())
	if err != nil {
		t.Fatalf("Organize failed: %v", err)
	}

	want := filepath.Join(cfg.Paths.OutputDir, "Austen, Jane", "Emma")
	if result.TargetDir != want {
		t.Errorf("target dir: got %q, want %q", result.TargetDir, want)
	}
	if result.CopiedFiles != 3 {
		t.Errorf("copied files: got %d, want 3", result.CopiedFiles)
	}
	for name, content := range map[string]string{"chapter1.mp3": "audio one", "cover.jpg": "image"} {
		got, err := os.ReadFile(filepath.Join(want, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(got) != content {
			t.Errorf("%s content: %q", name, got)
		}
	}
	// The source folder stays untouched.
	if _, err := os.Stat(filepath.Join(record.FullPath, "chapter1.mp3")); err != nil {
		t.Errorf("source file disturbed: %v", err)
	}
}

func TestOrganizeIncludesSeriesLevel(t *testing.T) {
	cfg := testConfig(t, false)
	record := sourceFolder(t, map[string]string{"part1.m4b": "x"})
	doc := metadata.Document{
		Author:         metadata.Author{First: "Terry", Last: "Pratchett", Structured: true},
		Title:          metadata.Title{Main: "The Fifth Elephant"},
		Series:         "Discworld",
		SeriesSequence: 24,
	}

	result, err := New(cfg, nil).Organize(context.Background(), record, doc)
	if err != nil {
		t.Fatalf("Organize failed: %v", err)
	}
	want := filepath.Join(cfg.Paths.OutputDir, "Pratchett, Terry", "Discworld", "Vol 24 - The Fifth Elephant")
	if result.TargetDir != want {
		t.Errorf("target dir: got %q, want %q", result.TargetDir, want)
	}
}

func TestOrganizePreservesModTime(t *testing.T) {
	cfg := testConfig(t, false)
	record := sourceFolder(t, map[string]string{"chapter1.mp3": "audio"})
	when := time.Date(2019, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(record.FullPath, "chapter1.mp3"), when, when); err != nil {
		t.Fatal(err)
	}

	result, err := New(cfg, nil).Organize(context.Background(), record, emmaDocument())
	if err != nil {
		t.Fatalf("Organize failed: %v", err)
	}
	info, err := os.Stat(filepath.Join(result.TargetDir, "chapter1.mp3"))
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(when) {
		t.Errorf("mtime not preserved: got %v, want %v", info.ModTime(), when)
	}
}

func TestOrganizeSkipsSubdirectories(t *testing.T) {
	cfg := testConfig(t, false)
	record := sourceFolder(t, map[string]string{"chapter1.mp3": "audio"})
	if err := os.Mkdir(filepath.Join(record.FullPath, "extras"), 0o755); err != nil {
		t.Fatal(err)
	}
	record.Files = append(record.Files, "extras")

	result, err := New(cfg, nil).Organize(context.Background(), record, emmaDocument())
	if err != nil {
		t.Fatalf("Organize failed: %v", err)
	}
	if result.CopiedFiles != 1 {
		t.Errorf("copied files: got %d, want 1", result.CopiedFiles)
	}
	if _, err := os.Stat(filepath.Join(result.TargetDir, "extras")); !os.IsNotExist(err) {
		t.Error("subdirectory should not be copied")
	}
}

func TestOrganizeOverwritesExistingDestination(t *testing.T) {
	cfg := testConfig(t, false)
	record := sourceFolder(t, map[string]string{"chapter1.mp3": "fresh audio"})
	org := New(cfg, nil)

	stale := filepath.Join(org.TargetDir(emmaDocument()), "chapter1.mp3")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("stale audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := org.Organize(context.Background(), record, emmaDocument()); err != nil {
		t.Fatalf("Organize failed: %v", err)
	}
	got, err := os.ReadFile(stale)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fresh audio" {
		t.Errorf("destination not overwritten: %q", got)
	}
}

func TestOrganizeWritesSidecar(t *testing.T) {
	cfg := testConfig(t, true)
	record := sourceFolder(t, map[string]string{"chapter1.mp3": "audio"})

	result, err := New(cfg, nil).Organize(context.Background(), record, emmaDocument())
	if err != nil {
		t.Fatalf("Organize failed: %v", err)
	}
	if !result.SidecarWritten {
		t.Error("sidecar should be reported written")
	}

	data, err := os.ReadFile(filepath.Join(result.TargetDir, SidecarName))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	var doc metadata.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("sidecar not JSON: %v", err)
	}
	if doc.Author.Last != "Austen" || doc.Title.Main != "Emma" {
		t.Errorf("sidecar content: %+v", doc)
	}
}

func TestOrganizeCancelledContext(t *testing.T) {
	cfg := testConfig(t, false)
	record := sourceFolder(t, map[string]string{"chapter1.mp3": "audio"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(cfg, nil).Organize(ctx, record, emmaDocument()); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
