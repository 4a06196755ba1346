package config

const (
	defaultInputDir         = "/data/input"
	defaultOutputDir        = "/data/output"
	defaultStateDir         = "~/.local/share/shelfsort/state"
	defaultLogDir           = "~/.local/share/shelfsort/logs"
	defaultAIBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultAIModel          = "google/gemini-3-flash-preview"
	defaultAIReferer        = "https://github.com/shelfsort/shelfsort"
	defaultAITitle          = "Shelfsort Metadata Resolver"
	defaultAITimeoutSeconds = 45
	defaultMinFreeGiB       = 1
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		AI: AI{
			BaseURL:        defaultAIBaseURL,
			Model:          defaultAIModel,
			Referer:        defaultAIReferer,
			Title:          defaultAITitle,
			TimeoutSeconds: defaultAITimeoutSeconds,
		},
		Organize: Organize{
			WriteSidecar: true,
			MinFreeGiB:   defaultMinFreeGiB,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
