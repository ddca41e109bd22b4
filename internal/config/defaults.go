package config

import (
	"github.com/greg-randall/prmptr/internal/constants"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
//
// Default values are chosen to provide a working configuration out of the box
// while following best practices for security and performance.
func DefaultConfig() *Config {
	return &Config{
		Generation: GenerationConfig{
			// Provider: "openai" works anywhere an API key is available.
			// Users with a local CLI can switch to "command".
			Provider: "openai",

			// Model: gpt-4o-mini keeps per-fragment cost low; chains can
			// issue many requests per run.
			Model: constants.DefaultModel,

			// SystemPrompt: fragments carry their own instructions, so the
			// system prompt only has to enforce literal compliance.
			SystemPrompt: constants.DefaultSystemPrompt,

			BaseURL: constants.DefaultBaseURL,

			// APIKeyEnvVar: standard OpenAI variable.
			// This keeps API keys out of config files for security.
			APIKeyEnvVar: constants.DefaultAPIKeyEnvVar,

			// Timeout: 2 minutes per request; a single fragment should not
			// hold the whole chain hostage.
			Timeout: constants.DefaultGenerationTimeout,
		},
		Run: RunConfig{
			// Mode: sequential produces a deterministic step log; parallel
			// is opt-in via config or --parallel.
			Mode: ModeSequential,

			// MaxWorkers: 0 means one worker per available CPU.
			MaxWorkers: 0,

			// Strict: false keeps last-definition-wins behavior for
			// redefined fragments, with a logged warning.
			Strict: false,

			// SaveArtifacts: successful runs write the output and chain log
			// files next to the input by default.
			SaveArtifacts: true,

			// ArtifactDir: empty means the current working directory.
			ArtifactDir: "",
		},
		Log: LogConfig{
			Level: "info",

			// Dir: empty means ~/.prmptr/logs.
			Dir: "",

			MaxSizeMB:  constants.DefaultLogMaxSizeMB,
			MaxBackups: constants.DefaultLogMaxBackups,
			MaxAgeDays: constants.DefaultLogMaxAgeDays,
			Compress:   false,
		},
	}
}
