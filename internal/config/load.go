package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/greg-randall/prmptr/internal/errors"
)

// newViperInstance returns a Viper seeded with the built-in defaults and
// wired for PRMPTR_* environment overrides. Dots in keys become
// underscores, so generation.model reads PRMPTR_GENERATION_MODEL.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("PRMPTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load builds the effective configuration. Precedence, highest first:
//
//	PRMPTR_* environment variables
//	./.prmptr.yaml (project)
//	~/.prmptr/config.yaml (global)
//	built-in defaults
//
// Missing config files are not errors; most runs have neither. CLI flag
// values sit above all of these and go through LoadWithOverrides. The
// context only carries the logger.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	// Global first, so the project file merges over it.
	if globalPath, err := GlobalConfigPath(); err == nil {
		if err := mergeConfigFile(v, globalPath, "global"); err != nil {
			return nil, err
		}
	}
	if err := mergeConfigFile(v, ProjectConfigPath(), "project"); err != nil {
		return nil, err
	}

	cfg, err := decodeConfig(v)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Str("provider", cfg.Generation.Provider).
		Str("model", cfg.Generation.Model).
		Dur("timeout", cfg.Generation.Timeout).
		Str("mode", cfg.Run.Mode).
		Msg("configuration loaded")

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// LoadWithOverrides loads the configuration and lays CLI flag values on
// top. Only non-zero override fields apply, and the merged result is
// validated again since flags can introduce their own contradictions.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// LoadFromPaths loads from explicit config file locations instead of
// the conventional ones. Tests use this to point at fixtures; either
// path may be empty to skip that layer.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if err := mergeConfigFile(v, globalConfigPath, "global"); err != nil {
		return nil, err
	}
	if err := mergeConfigFile(v, projectConfigPath, "project"); err != nil {
		return nil, err
	}

	cfg, err := decodeConfig(v)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// mergeConfigFile merges the file at path into v when it exists. Viper
// merges over whatever is already loaded, which is what gives the
// project file precedence over the global one.
func mergeConfigFile(v *viper.Viper, path, label string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrapf(err, "failed to read %s config file", label)
	}
	return nil
}

// isConfigNotFoundError reports whether err is viper's missing-file error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// decodeConfig unmarshals the viper state into a Config. The decode
// hook lets duration fields accept strings like "2m".
func decodeConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// setDefaults seeds v from DefaultConfig, keeping the defaults in one
// place. Registering each key also makes it visible to AutomaticEnv.
// Keys must match the yaml tag names on the Config structs.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("generation.provider", def.Generation.Provider)
	v.SetDefault("generation.model", def.Generation.Model)
	v.SetDefault("generation.system_prompt", def.Generation.SystemPrompt)
	v.SetDefault("generation.base_url", def.Generation.BaseURL)
	v.SetDefault("generation.api_key_env_var", def.Generation.APIKeyEnvVar)
	v.SetDefault("generation.timeout", def.Generation.Timeout)
	v.SetDefault("generation.command", def.Generation.Command)
	v.SetDefault("generation.command_args", []string{})

	v.SetDefault("run.mode", def.Run.Mode)
	v.SetDefault("run.max_workers", def.Run.MaxWorkers)
	v.SetDefault("run.strict", def.Run.Strict)
	v.SetDefault("run.save_artifacts", def.Run.SaveArtifacts)
	v.SetDefault("run.artifact_dir", def.Run.ArtifactDir)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.dir", def.Log.Dir)
	v.SetDefault("log.max_size_mb", def.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", def.Log.MaxBackups)
	v.SetDefault("log.max_age_days", def.Log.MaxAgeDays)
	v.SetDefault("log.compress", def.Log.Compress)
}

// applyOverrides copies non-zero override fields into cfg.
//
// Bool fields (Strict, SaveArtifacts, Compress) are absent here: a
// false is indistinguishable from unset, so the CLI applies bool flags
// itself, gated on cobra's Changed().
func applyOverrides(cfg, overrides *Config) {
	gen, ov := &cfg.Generation, &overrides.Generation
	overrideString(&gen.Provider, ov.Provider)
	overrideString(&gen.Model, ov.Model)
	overrideString(&gen.SystemPrompt, ov.SystemPrompt)
	overrideString(&gen.BaseURL, ov.BaseURL)
	overrideString(&gen.APIKeyEnvVar, ov.APIKeyEnvVar)
	overrideString(&gen.Command, ov.Command)
	if ov.Timeout != 0 {
		gen.Timeout = ov.Timeout
	}
	if len(ov.CommandArgs) > 0 {
		gen.CommandArgs = ov.CommandArgs
	}

	overrideString(&cfg.Run.Mode, overrides.Run.Mode)
	overrideString(&cfg.Run.ArtifactDir, overrides.Run.ArtifactDir)
	if overrides.Run.MaxWorkers != 0 {
		cfg.Run.MaxWorkers = overrides.Run.MaxWorkers
	}

	overrideString(&cfg.Log.Level, overrides.Log.Level)
	overrideString(&cfg.Log.Dir, overrides.Log.Dir)
}

// overrideString assigns src over dst unless src is empty.
func overrideString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
