package config

import (
	"github.com/greg-randall/prmptr/internal/errors"
)

// maxWorkerLimit caps run.max_workers so a typo in a config file cannot
// request an absurd number of concurrent generation calls.
const maxWorkerLimit = 1024

// validLogLevels contains the accepted log.level values.
var validLogLevels = map[string]bool{
	"trace":    true,
	"debug":    true,
	"info":     true,
	"warn":     true,
	"error":    true,
	"fatal":    true,
	"disabled": true,
}

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - Generation provider must be "openai" or "command"
//   - Generation model and base URL must be set for the openai provider
//   - Generation command must be set for the command provider
//   - Generation timeout must be positive
//   - Run mode must be "sequential" or "parallel"
//   - Run max workers must be between 0 and 1024 (0 means auto)
//   - Log level must be a recognized level name
//   - Log rotation settings must not be negative
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	// Validate Generation config
	if err := validateGenerationConfig(&cfg.Generation); err != nil {
		return err
	}

	// Validate Run config
	if err := validateRunConfig(&cfg.Run); err != nil {
		return err
	}

	// Validate Log config
	if err := validateLogConfig(&cfg.Log); err != nil {
		return err
	}

	return nil
}

// validateGenerationConfig checks generation-specific configuration values.
func validateGenerationConfig(cfg *GenerationConfig) error {
	switch cfg.Provider {
	case "openai":
		if cfg.Model == "" {
			return errors.Wrap(errors.ErrConfigInvalidGeneration,
				"generation.model must not be empty for the openai provider")
		}
		if cfg.BaseURL == "" {
			return errors.Wrap(errors.ErrConfigInvalidGeneration,
				"generation.base_url must not be empty for the openai provider")
		}
	case "command":
		if cfg.Command == "" {
			return errors.Wrap(errors.ErrConfigInvalidGeneration,
				"generation.command must not be empty for the command provider")
		}
	default:
		return errors.Wrapf(errors.ErrConfigInvalidGeneration,
			"generation.provider must be one of: openai, command, got %q", cfg.Provider)
	}

	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidGeneration,
			"generation.timeout must be positive, got %s", cfg.Timeout)
	}

	return nil
}

// validateRunConfig checks run-specific configuration values.
func validateRunConfig(cfg *RunConfig) error {
	if cfg.Mode != ModeSequential && cfg.Mode != ModeParallel {
		return errors.Wrapf(errors.ErrConfigInvalidRun,
			"run.mode must be one of: %s, %s, got %q", ModeSequential, ModeParallel, cfg.Mode)
	}

	if cfg.MaxWorkers < 0 || cfg.MaxWorkers > maxWorkerLimit {
		return errors.Wrapf(errors.ErrConfigInvalidRun,
			"run.max_workers must be between 0 and %d, got %d", maxWorkerLimit, cfg.MaxWorkers)
	}

	return nil
}

// validateLogConfig checks log-specific configuration values.
func validateLogConfig(cfg *LogConfig) error {
	if !validLogLevels[cfg.Level] {
		return errors.Wrapf(errors.ErrConfigInvalidLog,
			"log.level must be a valid level name, got %q", cfg.Level)
	}

	if cfg.MaxSizeMB <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLog,
			"log.max_size_mb must be positive, got %d", cfg.MaxSizeMB)
	}

	if cfg.MaxBackups < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLog,
			"log.max_backups cannot be negative, got %d", cfg.MaxBackups)
	}

	if cfg.MaxAgeDays < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLog,
			"log.max_age_days cannot be negative, got %d", cfg.MaxAgeDays)
	}

	return nil
}
