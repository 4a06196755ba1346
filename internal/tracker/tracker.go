package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shelfsort/internal/logging"
)

// Status is the recorded outcome of a processing decision.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
)

// Entry is one persisted processing decision. Extra carries whatever
// additional fields were recorded with the decision (confidence, output path,
// skip reason) and round-trips through load/save untouched.
type Entry struct {
	Status    Status
	Timestamp string
	Extra     map[string]any
}

func (e Entry) MarshalJSON() ([]byte, error) {
	merged := make(map[string]any, len(e.Extra)+2)
	for key, value := range e.Extra {
		if key == "status" || key == "timestamp" {
			continue
		}
		merged[key] = value
	}
	merged["status"] = string(e.Status)
	merged["timestamp"] = e.Timestamp
	return json.Marshal(merged)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	entry := Entry{}
	if status, ok := raw["status"].(string); ok {
		entry.Status = Status(status)
	}
	if timestamp, ok := raw["timestamp"].(string); ok {
		entry.Timestamp = timestamp
	}
	delete(raw, "status")
	delete(raw, "timestamp")
	if len(raw) > 0 {
		entry.Extra = raw
	}
	*e = entry
	return nil
}

// Tracker is the persisted ledger of per-folder processing decisions, keyed
// by slash-separated relative path. Processing is strictly sequential within
// a run and concurrent runs are unsupported, so access is not synchronized;
// the run lock upstream keeps two processes away from the same file.
type Tracker struct {
	path    string
	logger  *slog.Logger
	entries map[string]Entry
}

// Load reads the persisted tracker. A missing file yields an empty tracker
// (first run); an unreadable or unparseable file is an error, never silently
// discarded, because losing prior state would duplicate library output.
func Load(path string, logger *slog.Logger) (*Tracker, error) {
	logger = logging.NewComponentLogger(logger, "tracker")

	t := &Tracker{
		path:    path,
		logger:  logger,
		entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no tracker file, starting empty", logging.String("path", path))
			return t, nil
		}
		return nil, fmt.Errorf("read tracker %s: %w", path, err)
	}
	if len(data) == 0 {
		return t, nil
	}

	if err := json.Unmarshal(data, &t.entries); err != nil {
		return nil, fmt.Errorf("parse tracker %s: %w", path, err)
	}

	logger.Debug("loaded tracker",
		logging.Int("entry_count", len(t.entries)),
		logging.String("path", path))
	return t, nil
}

// Path returns the tracker file location.
func (t *Tracker) Path() string {
	return t.path
}

// Get returns the entry for the given relative path, if any.
func (t *Tracker) Get(relPath string) (Entry, bool) {
	entry, ok := t.entries[relPath]
	return entry, ok
}

// Len returns the number of tracked folders.
func (t *Tracker) Len() int {
	return len(t.entries)
}

// Mark records a processing decision for relPath with a fresh UTC timestamp
// and merges in the extra fields, then immediately persists the whole
// document. Write-through keeps a crash from losing anything but the
// in-flight folder.
func (t *Tracker) Mark(relPath string, status Status, extra map[string]any) error {
	relPath = strings.TrimSpace(relPath)
	if relPath == "" {
		return errors.New("relative path cannot be empty")
	}

	entry := Entry{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if len(extra) > 0 {
		entry.Extra = make(map[string]any, len(extra))
		for key, value := range extra {
			entry.Extra[key] = value
		}
	}
	t.entries[relPath] = entry

	if err := t.save(); err != nil {
		return fmt.Errorf("persist tracker: %w", err)
	}

	t.logger.Debug("marked folder",
		logging.String(logging.FieldFolder, relPath),
		logging.String("status", string(status)))
	return nil
}

// Paths returns all tracked relative paths in sorted order.
func (t *Tracker) Paths() []string {
	paths := make([]string, 0, len(t.entries))
	for relPath := range t.entries {
		paths = append(paths, relPath)
	}
	sort.Strings(paths)
	return paths
}

// CountByStatus returns how many entries carry each status.
func (t *Tracker) CountByStatus() map[Status]int {
	counts := make(map[Status]int, 2)
	for _, entry := range t.entries {
		counts[entry.Status]++
	}
	return counts
}

// Clear removes all entries and persists the empty document. Entries are
// never removed automatically; this backs the explicit operator command.
func (t *Tracker) Clear() (int, error) {
	removed := len(t.entries)
	t.entries = make(map[string]Entry)
	if err := t.save(); err != nil {
		return 0, fmt.Errorf("persist tracker: %w", err)
	}
	t.logger.Debug("cleared tracker", logging.Int("removed", removed))
	return removed, nil
}

// save writes the whole document atomically via temp file + rename.
func (t *Tracker) save() error {
	data, err := json.MarshalIndent(t.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tracker: %w", err)
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create tracker directory: %w", err)
	}

	tmpPath := t.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, t.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
