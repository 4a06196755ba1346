package testsupport

import (
	"path/filepath"
	"testing"

	"shelfsort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.AI.APIKey = "test"
	cfg.Paths.InputDir = filepath.Join(base, "input")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithAPIKey sets the resolver API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.AI.APIKey = key
	}
}

// WithResolverURL points the resolver at a test server.
func WithResolverURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.AI.BaseURL = url
	}
}

// WithSidecar enables the metadata sidecar on the test config.
func WithSidecar() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Organize.WriteSidecar = true
	}
}

// WithHistory enables the run-history journal on the test config.
func WithHistory() ConfigOption {
	return func(cfg *config.Config) {
		cfg.History.Enabled = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.InputDir)
}
