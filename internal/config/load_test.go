package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greg-randall/prmptr/internal/constants"
)

// clearPrmptrEnv blanks any PRMPTR_* env vars so the ambient environment
// cannot leak into a test. Viper treats empty env vars as unset.
func clearPrmptrEnv(t *testing.T) {
	t.Helper()
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "PRMPTR_") {
			continue
		}
		if i := strings.IndexByte(env, '='); i > 0 {
			t.Setenv(env[:i], "")
		}
	}
}

// chdirTemp switches the working directory to a fresh temp dir and restores
// the old one when the test finishes.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
	})
	return tempDir
}

// isolateConfig points HOME and the working directory at empty temp
// dirs, so Load sees no real config files.
func isolateConfig(t *testing.T) {
	t.Helper()
	chdirTemp(t)
	t.Setenv("HOME", t.TempDir())
	clearPrmptrEnv(t)
}

func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "openai", cfg.Generation.Provider)
	assert.Equal(t, constants.DefaultModel, cfg.Generation.Model)
	assert.Equal(t, constants.DefaultBaseURL, cfg.Generation.BaseURL)
	assert.Equal(t, constants.DefaultGenerationTimeout, cfg.Generation.Timeout)
	assert.Equal(t, ModeSequential, cfg.Run.Mode)
	assert.True(t, cfg.Run.SaveArtifacts)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromPaths_ProjectOverridesGlobal(t *testing.T) {
	clearPrmptrEnv(t)

	globalConfig := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, globalConfig, `
generation:
  model: gpt-4o
  timeout: 5m
run:
  mode: parallel
`)

	projectConfig := filepath.Join(t.TempDir(), ".prmptr.yaml")
	writeConfigFile(t, projectConfig, `
generation:
  model: gpt-4o-mini
`)

	cfg, err := LoadFromPaths(context.Background(), projectConfig, globalConfig)
	require.NoError(t, err)

	// The project file wins where both set a key; untouched global keys
	// survive the merge.
	assert.Equal(t, "gpt-4o-mini", cfg.Generation.Model)
	assert.Equal(t, 5*time.Minute, cfg.Generation.Timeout)
	assert.Equal(t, ModeParallel, cfg.Run.Mode)
}

func TestLoadFromPaths_GlobalOnly(t *testing.T) {
	clearPrmptrEnv(t)

	globalConfig := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, globalConfig, `
generation:
  model: gpt-4o
  system_prompt: "Answer tersely."
run:
  mode: parallel
  max_workers: 8
`)

	cfg, err := LoadFromPaths(context.Background(), "", globalConfig)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.Generation.Model)
	assert.Equal(t, "Answer tersely.", cfg.Generation.SystemPrompt)
	assert.Equal(t, ModeParallel, cfg.Run.Mode)
	assert.Equal(t, 8, cfg.Run.MaxWorkers)
}

func TestLoad_EnvVarOverridesConfigFile(t *testing.T) {
	tempDir := chdirTemp(t)
	t.Setenv("HOME", t.TempDir())
	clearPrmptrEnv(t)

	writeConfigFile(t, filepath.Join(tempDir, constants.ProjectConfigName), `
generation:
  model: gpt-4o
`)
	t.Setenv("PRMPTR_GENERATION_MODEL", "o3-mini")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "o3-mini", cfg.Generation.Model)
}

func TestLoad_EnvVarMapping(t *testing.T) {
	isolateConfig(t)

	tests := []struct {
		envVar   string
		value    string
		validate func(*testing.T, *Config)
	}{
		{
			envVar: "PRMPTR_GENERATION_MODEL",
			value:  "gpt-4o",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, "gpt-4o", c.Generation.Model)
			},
		},
		{
			envVar: "PRMPTR_GENERATION_TIMEOUT",
			value:  "45s",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, 45*time.Second, c.Generation.Timeout)
			},
		},
		{
			envVar: "PRMPTR_RUN_MODE",
			value:  "parallel",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, ModeParallel, c.Run.Mode)
			},
		},
		{
			envVar: "PRMPTR_RUN_MAX_WORKERS",
			value:  "16",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, 16, c.Run.MaxWorkers)
			},
		},
		{
			envVar: "PRMPTR_RUN_STRICT",
			value:  "true",
			validate: func(t *testing.T, c *Config) {
				assert.True(t, c.Run.Strict)
			},
		},
		{
			envVar: "PRMPTR_LOG_LEVEL",
			value:  "debug",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, "debug", c.Log.Level)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			cfg, err := Load(context.Background())
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadWithOverrides(t *testing.T) {
	isolateConfig(t)

	overrides := &Config{
		Generation: GenerationConfig{
			Model:   "gpt-4o",
			Timeout: 5 * time.Minute,
		},
		Run: RunConfig{
			Mode:       ModeParallel,
			MaxWorkers: 12,
		},
		Log: LogConfig{
			Level: "debug",
		},
	}

	cfg, err := LoadWithOverrides(context.Background(), overrides)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.Generation.Model)
	assert.Equal(t, 5*time.Minute, cfg.Generation.Timeout)
	assert.Equal(t, ModeParallel, cfg.Run.Mode)
	assert.Equal(t, 12, cfg.Run.MaxWorkers)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Fields absent from the overrides keep their defaults.
	assert.Equal(t, "openai", cfg.Generation.Provider)
	assert.Equal(t, constants.DefaultBaseURL, cfg.Generation.BaseURL)
	assert.True(t, cfg.Run.SaveArtifacts)
}

func TestLoadWithOverrides_Nil(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadWithOverrides(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultModel, cfg.Generation.Model)
}

func TestLoadWithOverrides_RevalidatesMergedConfig(t *testing.T) {
	isolateConfig(t)

	_, err := LoadWithOverrides(context.Background(), &Config{
		Run: RunConfig{Mode: "bogus"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run.mode must be one of")
}

func TestLoadFromPaths_ParsesDurationStrings(t *testing.T) {
	clearPrmptrEnv(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, configPath, `
generation:
  timeout: 90s
`)

	cfg, err := LoadFromPaths(context.Background(), configPath, "")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Generation.Timeout)
}

func TestLoadFromPaths_MalformedYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, configPath, `
generation:
  model: gpt-4o
  invalid yaml here: [
`)

	_, err := LoadFromPaths(context.Background(), configPath, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read project config")
}

func TestLoadFromPaths_RejectsInvalidValues(t *testing.T) {
	clearPrmptrEnv(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, configPath, `
run:
  mode: both
`)

	_, err := LoadFromPaths(context.Background(), configPath, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run.mode must be one of")
}

func TestLoad_MergesGlobalAndProjectConfigs(t *testing.T) {
	clearPrmptrEnv(t)

	// A fake home carrying a global config.
	fakeHome := t.TempDir()
	globalDir := filepath.Join(fakeHome, constants.PrmptrHome)
	require.NoError(t, os.MkdirAll(globalDir, 0o750))
	writeConfigFile(t, filepath.Join(globalDir, constants.GlobalConfigName), `
generation:
  model: gpt-4o
  timeout: 10m
run:
  mode: parallel
`)
	t.Setenv("HOME", fakeHome)

	// A working directory whose project config overrides only the model.
	projectDir := chdirTemp(t)
	writeConfigFile(t, filepath.Join(projectDir, constants.ProjectConfigName), `
generation:
  model: gpt-4o-mini
`)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.Generation.Model)
	assert.Equal(t, 10*time.Minute, cfg.Generation.Timeout)
	assert.Equal(t, ModeParallel, cfg.Run.Mode)
}

func TestConfig_PrecedenceFullChain(t *testing.T) {
	clearPrmptrEnv(t)

	globalConfig := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, globalConfig, `
generation:
  model: gpt-4o
  timeout: 1h
run:
  mode: parallel
log:
  level: warn
`)

	projectConfig := filepath.Join(t.TempDir(), ".prmptr.yaml")
	writeConfigFile(t, projectConfig, `
generation:
  model: gpt-4o-mini
run:
  max_workers: 6
`)

	t.Setenv("PRMPTR_GENERATION_MODEL", "o3-mini")

	cfg, err := LoadFromPaths(context.Background(), projectConfig, globalConfig)
	require.NoError(t, err)

	// env > project > global > defaults, key by key.
	assert.Equal(t, "o3-mini", cfg.Generation.Model)
	assert.Equal(t, 6, cfg.Run.MaxWorkers)
	assert.Equal(t, 1*time.Hour, cfg.Generation.Timeout)
	assert.Equal(t, ModeParallel, cfg.Run.Mode)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestApplyOverrides_PartialOverride(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadWithOverrides(context.Background(), &Config{
		Generation: GenerationConfig{Model: "gpt-4o"},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.Generation.Model)
	assert.Equal(t, "openai", cfg.Generation.Provider)
	assert.Equal(t, constants.DefaultGenerationTimeout, cfg.Generation.Timeout)
	assert.Equal(t, ModeSequential, cfg.Run.Mode)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestApplyOverrides_IgnoresBoolFields(t *testing.T) {
	t.Parallel()

	// Bool overrides are applied by the CLI via Changed(), never here,
	// so even an explicit true must not leak through.
	cfg := DefaultConfig()
	cfg.Run.Strict = false
	cfg.Run.SaveArtifacts = true

	applyOverrides(cfg, &Config{Run: RunConfig{Strict: true, SaveArtifacts: false}})

	assert.False(t, cfg.Run.Strict)
	assert.True(t, cfg.Run.SaveArtifacts)
}
