package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"shelfsort/internal/metadata"
	"shelfsort/internal/scanner"
)

func completionBody(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"content": content},
			},
		},
	}
}

func sampleRecord() scanner.Record {
	return scanner.Record{
		RelPath:    "Pratchett/The Fifth Elephant",
		FullPath:   "/library/in/Pratchett/The Fifth Elephant",
		Files:      []string{"part1.mp3", "part2.mp3", "cover.jpg"},
		AudioFiles: []string{"part1.mp3", "part2.mp3"},
	}
}

func TestClientResolve(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization header: %q", auth)
		}
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("expected system+user messages, got %d", len(req.Messages))
		}
		gotBody = []byte(req.Messages[1].Content)
		doc := `{"author":{"first":"Terry","last":"Pratchett"},"title":{"main":"The Fifth Elephant"},"confidence":{"title":"high"}}`
		_ = json.NewEncoder(w).Encode(completionBody(doc))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "demo"})
	doc, err := client.Resolve(context.Background(), sampleRecord())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if doc.Author.Last != "Pratchett" || doc.Title.Main != "The Fifth Elephant" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.TitleConfidence() != metadata.ConfidenceHigh {
		t.Errorf("confidence: %q", doc.TitleConfidence())
	}
	if !strings.Contains(string(gotBody), "The Fifth Elephant") {
		t.Errorf("user prompt should carry the folder name: %s", gotBody)
	}
	if !strings.Contains(string(gotBody), "part1.mp3") {
		t.Errorf("user prompt should carry the file listing: %s", gotBody)
	}
}

func TestClientResolveCodeFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fenced := "```json\n{\"title\":\"Emma\",\"confidence\":{\"title\":\"very_high\"}}\n```"
		_ = json.NewEncoder(w).Encode(completionBody(fenced))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	doc, err := client.Resolve(context.Background(), sampleRecord())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if doc.Title.Main != "Emma" {
		t.Errorf("fenced payload not decoded: %+v", doc)
	}
}

func TestClientResolveRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(completionBody(`{"title":"Emma"}`))
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo"},
		WithRetryBackoff(time.Millisecond, time.Millisecond),
		WithSleeper(func(time.Duration) {}),
	)
	doc, err := client.Resolve(context.Background(), sampleRecord())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if doc.Title.Main != "Emma" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestClientResolveDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"},
		WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.Resolve(context.Background(), sampleRecord()); err == nil {
		t.Fatal("expected error for 401")
	}
	if calls.Load() != 1 {
		t.Errorf("401 must not be retried: %d attempts", calls.Load())
	}
}

func TestClientResolveRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "demo"})
	if _, err := client.Resolve(context.Background(), sampleRecord()); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestDecodeResolverJSONProseWrapped(t *testing.T) {
	var doc metadata.Document
	content := `Here is the metadata you asked for: {"title":"Emma"} Hope that helps!`
	if err := DecodeResolverJSON(content, &doc); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if doc.Title.Main != "Emma" {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestDecodeResolverJSONEmpty(t *testing.T) {
	var doc metadata.Document
	if err := DecodeResolverJSON("   ", &doc); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestBuildUserPromptParentFolder(t *testing.T) {
	prompt, err := buildUserPrompt(scanner.Record{RelPath: "Austen/Emma", Files: []string{"a.mp3"}})
	if err != nil {
		t.Fatalf("buildUserPrompt failed: %v", err)
	}
	var payload promptPayload
	if err := json.Unmarshal([]byte(prompt), &payload); err != nil {
		t.Fatalf("prompt is not JSON: %v", err)
	}
	if payload.CurrentFolder != "Emma" || payload.ParentFolder != "Austen" {
		t.Errorf("folder fields: %+v", payload)
	}

	top, err := buildUserPrompt(scanner.Record{RelPath: "Emma"})
	if err != nil {
		t.Fatalf("buildUserPrompt failed: %v", err)
	}
	if err := json.Unmarshal([]byte(top), &payload); err != nil {
		t.Fatalf("prompt is not JSON: %v", err)
	}
	if payload.ParentFolder != "" {
		t.Errorf("top-level folder should have empty parent: %+v", payload)
	}
}
