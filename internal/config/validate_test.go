package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prmptrerrors "github.com/greg-randall/prmptr/internal/errors"
)

// validConfig returns a config that passes validation, for tests that
// break one field at a time.
func validConfig() *Config {
	return &Config{
		Generation: GenerationConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			BaseURL:  "https://api.openai.com/v1",
			Timeout:  2 * time.Minute,
		},
		Run: RunConfig{
			Mode: ModeSequential,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), prmptrerrors.ErrConfigNil)
}

func TestValidate_DefaultConfig(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(DefaultConfig()))
}

func TestValidate_CommandProvider(t *testing.T) {
	t.Parallel()

	// The command provider needs no model or base URL, only a command.
	cfg := validConfig()
	cfg.Generation.Provider = "command"
	cfg.Generation.Model = ""
	cfg.Generation.BaseURL = ""
	cfg.Generation.Command = "llm"
	cfg.Generation.CommandArgs = []string{"--no-stream"}
	cfg.Run.Mode = ModeParallel
	cfg.Run.MaxWorkers = 4

	require.NoError(t, Validate(cfg))
}

func TestValidate_Generation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "empty provider",
			mutate: func(c *Config) { c.Generation.Provider = "" },
			errMsg: "generation.provider must be one of",
		},
		{
			name:   "unknown provider",
			mutate: func(c *Config) { c.Generation.Provider = "local" },
			errMsg: "generation.provider must be one of",
		},
		{
			name:   "openai without model",
			mutate: func(c *Config) { c.Generation.Model = "" },
			errMsg: "generation.model must not be empty",
		},
		{
			name:   "openai without base URL",
			mutate: func(c *Config) { c.Generation.BaseURL = "" },
			errMsg: "generation.base_url must not be empty",
		},
		{
			name: "command provider without command",
			mutate: func(c *Config) {
				c.Generation.Provider = "command"
				c.Generation.Command = ""
			},
			errMsg: "generation.command must not be empty",
		},
		{
			name:   "zero timeout",
			mutate: func(c *Config) { c.Generation.Timeout = 0 },
			errMsg: "generation.timeout must be positive",
		},
		{
			name:   "negative timeout",
			mutate: func(c *Config) { c.Generation.Timeout = -30 * time.Second },
			errMsg: "generation.timeout must be positive",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			require.ErrorIs(t, err, prmptrerrors.ErrConfigInvalidGeneration)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestValidate_Run(t *testing.T) {
	t.Parallel()

	t.Run("accepts both modes across the worker range", func(t *testing.T) {
		t.Parallel()

		for _, mode := range []string{ModeSequential, ModeParallel} {
			for _, workers := range []int{0, 8, 1024} {
				cfg := validConfig()
				cfg.Run.Mode = mode
				cfg.Run.MaxWorkers = workers
				assert.NoError(t, Validate(cfg), "mode=%s workers=%d", mode, workers)
			}
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "empty mode",
			mutate: func(c *Config) { c.Run.Mode = "" },
			errMsg: "run.mode must be one of",
		},
		{
			name:   "unknown mode",
			mutate: func(c *Config) { c.Run.Mode = "concurrent" },
			errMsg: "run.mode must be one of",
		},
		{
			name:   "negative workers",
			mutate: func(c *Config) { c.Run.MaxWorkers = -1 },
			errMsg: "run.max_workers must be between 0 and 1024",
		},
		{
			name:   "too many workers",
			mutate: func(c *Config) { c.Run.MaxWorkers = 1025 },
			errMsg: "run.max_workers must be between 0 and 1024",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			require.ErrorIs(t, err, prmptrerrors.ErrConfigInvalidRun)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestValidate_Log(t *testing.T) {
	t.Parallel()

	t.Run("accepts every zerolog level name", func(t *testing.T) {
		t.Parallel()

		for _, level := range []string{"trace", "debug", "info", "warn", "error", "fatal", "disabled"} {
			cfg := validConfig()
			cfg.Log.Level = level
			assert.NoError(t, Validate(cfg), "level=%s", level)
		}
	})

	t.Run("zero backups and age mean keep forever", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.Log.MaxBackups = 0
		cfg.Log.MaxAgeDays = 0
		assert.NoError(t, Validate(cfg))
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "empty level",
			mutate: func(c *Config) { c.Log.Level = "" },
			errMsg: "log.level must be a valid level name",
		},
		{
			name:   "unknown level",
			mutate: func(c *Config) { c.Log.Level = "verbose" },
			errMsg: "log.level must be a valid level name",
		},
		{
			name:   "zero max size",
			mutate: func(c *Config) { c.Log.MaxSizeMB = 0 },
			errMsg: "log.max_size_mb must be positive",
		},
		{
			name:   "negative max size",
			mutate: func(c *Config) { c.Log.MaxSizeMB = -1 },
			errMsg: "log.max_size_mb must be positive",
		},
		{
			name:   "negative backups",
			mutate: func(c *Config) { c.Log.MaxBackups = -1 },
			errMsg: "log.max_backups cannot be negative",
		},
		{
			name:   "negative age",
			mutate: func(c *Config) { c.Log.MaxAgeDays = -1 },
			errMsg: "log.max_age_days cannot be negative",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			require.ErrorIs(t, err, prmptrerrors.ErrConfigInvalidLog)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestValidate_ReportsFirstFailure(t *testing.T) {
	t.Parallel()

	// Several fields are broken at once; the generation section is
	// checked first and its model error surfaces.
	cfg := validConfig()
	cfg.Generation.Model = ""
	cfg.Generation.BaseURL = ""
	cfg.Generation.Timeout = 0
	cfg.Run.Mode = "bogus"
	cfg.Log.Level = ""
	cfg.Log.MaxSizeMB = 0

	err := Validate(cfg)
	require.ErrorIs(t, err, prmptrerrors.ErrConfigInvalidGeneration)
	assert.Contains(t, err.Error(), "generation.model must not be empty")
}
