package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ForceMarkerName is the sentinel file that requests reprocessing of a
	// folder regardless of tracked status or resolver confidence.
	ForceMarkerName = ".force_process"
	// HintFileName is the optional free-text hint passed to the resolver.
	HintFileName = "metadata_hint.txt"

	// maxHintBytes bounds how much of a hint file is forwarded to the resolver.
	maxHintBytes = 4096
)

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".m4b":  {},
	".flac": {},
	".ogg":  {},
	".aac":  {},
	".wav":  {},
}

// IsAudioFile reports whether the filename carries a recognized audio extension.
func IsAudioFile(name string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Record describes one audio-bearing folder found under the input root.
type Record struct {
	// RelPath is the folder path relative to the scan root, slash-separated.
	// It is the stable join key for the tracker across runs and platforms.
	RelPath string
	// FullPath is the absolute folder path used for file operations.
	FullPath string
	// Files lists every entry in the folder, sorted by name.
	Files []string
	// AudioFiles is the subset of Files recognized as audio by extension.
	AudioFiles []string
	// ForceMarker reports whether the folder contains ForceMarkerName.
	ForceMarker bool
	// Hint holds the trimmed contents of HintFileName, if present.
	Hint string
}

// Walk visits every directory under root and invokes fn once per folder that
// directly contains at least one audio file. Folders whose audio lives only in
// deeper subdirectories are not reported themselves; each qualifying subfolder
// is reported independently. An error returned by fn aborts the walk.
func Walk(root string, fn func(Record) error) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve scan root: %w", err)
	}

	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("scan %s: %w", path, walkErr)
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		if rel == "." {
			// The root itself is a container, not a candidate.
			return nil
		}

		record, ok, err := inspect(path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		return fn(record)
	})
}

// Scan collects every record Walk would yield. Re-invoke to rescan.
func Scan(root string) ([]Record, error) {
	var records []Record
	err := Walk(root, func(record Record) error {
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func inspect(fullPath, relPath string) (Record, bool, error) {
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return Record{}, false, fmt.Errorf("read folder %s: %w", fullPath, err)
	}

	record := Record{
		RelPath:  relPath,
		FullPath: fullPath,
		Files:    make([]string, 0, len(entries)),
	}
	for _, entry := range entries {
		name := entry.Name()
		record.Files = append(record.Files, name)
		if entry.IsDir() {
			continue
		}
		switch {
		case IsAudioFile(name):
			record.AudioFiles = append(record.AudioFiles, name)
		case name == ForceMarkerName:
			record.ForceMarker = true
		case name == HintFileName:
			record.Hint = readHint(filepath.Join(fullPath, name))
		}
	}

	if len(record.AudioFiles) == 0 {
		return Record{}, false, nil
	}
	return record, true, nil
}

func readHint(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if len(data) > maxHintBytes {
		data = data[:maxHintBytes]
	}
	return strings.TrimSpace(string(data))
}
