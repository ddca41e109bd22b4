// Package config provides configuration management for prmptr with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (PRMPTR_* prefix)
//  3. Project config (./.prmptr.yaml)
//  4. Global config (~/.prmptr/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Execution mode names accepted by run.mode and the --parallel flag.
const (
	// ModeSequential resolves fragments one at a time in dependency order.
	ModeSequential = "sequential"

	// ModeParallel resolves fragments level by level with bounded workers.
	ModeParallel = "parallel"
)

// Config is the root configuration structure for prmptr.
// It contains all configuration sections for the application.
type Config struct {
	// Generation contains settings for the model provider that resolves
	// dynamic fragments.
	Generation GenerationConfig `yaml:"generation" mapstructure:"generation"`

	// Run contains settings for chain execution.
	Run RunConfig `yaml:"run" mapstructure:"run"`

	// Log contains settings for the rotating CLI log file.
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// GenerationConfig contains settings for the generation backend.
// These settings control how prmptr turns substituted prompts into values.
type GenerationConfig struct {
	// Provider selects the generation backend ("openai" or "command").
	// Default: "openai"
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model specifies the model to request from the provider.
	// Default: "gpt-4o-mini"
	Model string `yaml:"model" mapstructure:"model"`

	// SystemPrompt is sent ahead of every fragment prompt.
	// Default: a fixed instruction-following system prompt.
	SystemPrompt string `yaml:"system_prompt" mapstructure:"system_prompt"`

	// BaseURL is the OpenAI-compatible API root.
	// Default: "https://api.openai.com/v1"
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// APIKeyEnvVar names the environment variable holding the API key.
	// This keeps key material out of config files.
	// Default: "OPENAI_API_KEY"
	APIKeyEnvVar string `yaml:"api_key_env_var" mapstructure:"api_key_env_var"`

	// Timeout is the maximum duration for a single generation request.
	// Default: 2 minutes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Command is the CLI binary used by the command provider.
	// The substituted prompt is piped to its stdin and stdout is the value.
	Command string `yaml:"command,omitempty" mapstructure:"command"`

	// CommandArgs are extra arguments passed to Command.
	CommandArgs []string `yaml:"command_args,omitempty" mapstructure:"command_args"`
}

// ResolveAPIKeyEnvVar returns the environment variable name to read the API
// key from. It prefers the configured name and falls back to the provider's
// conventional variable.
func (c *GenerationConfig) ResolveAPIKeyEnvVar() string {
	if c.APIKeyEnvVar != "" {
		return c.APIKeyEnvVar
	}
	switch c.Provider {
	case "openai":
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// RunConfig contains settings for chain execution.
type RunConfig struct {
	// Mode selects the execution strategy ("sequential" or "parallel").
	// Default: "sequential"
	Mode string `yaml:"mode" mapstructure:"mode"`

	// MaxWorkers bounds concurrent generation calls inside a level in
	// parallel mode. 0 means one worker per available CPU.
	// Default: 0
	MaxWorkers int `yaml:"max_workers" mapstructure:"max_workers"`

	// Strict rejects chains that define the same fragment more than once.
	// When false, the last definition wins and a warning is logged.
	// Default: false
	Strict bool `yaml:"strict" mapstructure:"strict"`

	// SaveArtifacts writes the final output and chain log files after a
	// successful run. Failed runs never write artifacts.
	// Default: true
	SaveArtifacts bool `yaml:"save_artifacts" mapstructure:"save_artifacts"`

	// ArtifactDir is the directory artifacts are written to.
	// Empty means the current working directory.
	ArtifactDir string `yaml:"artifact_dir,omitempty" mapstructure:"artifact_dir"`
}

// LogConfig contains settings for the rotating CLI log file.
type LogConfig struct {
	// Level is the minimum level written to the log file
	// (trace, debug, info, warn, error). CLI verbosity flags override it
	// for console output only.
	// Default: "info"
	Level string `yaml:"level" mapstructure:"level"`

	// Dir is the directory holding the log file.
	// Empty means ~/.prmptr/logs.
	Dir string `yaml:"dir,omitempty" mapstructure:"dir"`

	// MaxSizeMB is the size in megabytes at which the log file rotates.
	// Default: 10
	MaxSizeMB int `yaml:"max_size_mb" mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated files kept on disk.
	// Default: 5
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups"`

	// MaxAgeDays removes rotated files older than this many days.
	// Default: 30
	MaxAgeDays int `yaml:"max_age_days" mapstructure:"max_age_days"`

	// Compress gzips rotated files.
	// Default: false
	Compress bool `yaml:"compress" mapstructure:"compress"`
}
