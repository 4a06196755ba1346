package resolver

import (
	"encoding/json"
	"path"

	"shelfsort/internal/scanner"
)

const systemPrompt = `You identify audiobooks from folder and file names.

Given a JSON description of one folder, respond with a single JSON object:
{
  "author": {"first": "...", "last": "..."},
  "title": {"main": "...", "subtitle": "..."},
  "series": "...",
  "series_sequence": 0,
  "publish_year": 0,
  "narrator": "...",
  "confidence": {"title": "low" | "high" | "very_high"}
}

Omit any field you cannot determine. The subtitle, series, series_sequence,
publish_year, and narrator fields are optional. Set confidence.title to "high"
or "very_high" only when the folder clearly identifies a specific published
audiobook; otherwise use "low". Respond with JSON only, no commentary.`

type promptPayload struct {
	CurrentFolder string   `json:"current_folder"`
	ParentFolder  string   `json:"parent_folder"`
	RelativePath  string   `json:"relative_path"`
	Files         []string `json:"files"`
	AudioFiles    []string `json:"audio_files"`
	Hint          string   `json:"hint,omitempty"`
}

func buildUserPrompt(record scanner.Record) (string, error) {
	payload := promptPayload{
		CurrentFolder: path.Base(record.RelPath),
		ParentFolder:  parentFolder(record.RelPath),
		RelativePath:  record.RelPath,
		Files:         record.Files,
		AudioFiles:    record.AudioFiles,
		Hint:          record.Hint,
	}
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func parentFolder(relPath string) string {
	parent := path.Dir(relPath)
	if parent == "." || parent == "/" {
		return ""
	}
	return path.Base(parent)
}
