// Package cli provides the command-line interface for prmptr.
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greg-randall/prmptr/internal/config"
	"github.com/greg-randall/prmptr/internal/errors"
)

// BuildInfo carries the version fields main injects through ldflags.
type BuildInfo struct {
	// Version is the semantic version, e.g. "1.0.0".
	Version string
	// Commit is the git commit the binary was built from.
	Commit string
	// Date is the build date.
	Date string
}

// Command handlers share one logger, installed by the root command's
// PersistentPreRunE once flags are parsed.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // shared across command handlers
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // guards globalLogger
)

// GetLogger returns the logger installed by the root command. Until the
// root PersistentPreRunE has run it returns a zero logger that discards
// all output. Safe for concurrent use.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// setLogger swaps the shared handler logger.
func setLogger(l zerolog.Logger) {
	globalLoggerMu.Lock()
	globalLogger = l
	globalLoggerMu.Unlock()
}

// newRootCmd builds the root command with its persistent flags, the run
// and graph subcommands, and the pre-run hook that validates global
// flags and brings up logging.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "prmptr",
		Short: "prmptr - prompt chain resolver and runner",
		Long: `prmptr resolves a prompt-chain file of named fragments written as
[[name]] = template, where templates reference other fragments (and the
initial input) with [[name]] placeholders. It computes a dependency-
respecting execution order, then runs the chain against a generation
backend, substituting resolved values into each template along the way.

Features:
  • Cycle-checked dependency resolution rooted at the output fragment
  • Sequential or level-parallel execution with bounded workers
  • Static fragments resolved without any generation call
  • OpenAI-compatible API or local command generation backends
  • Timestamped output and chain-log artifacts for every successful run`,
		Version: formatVersion(info),
		// Bare invocation shows help. Routing it through RunE keeps the
		// pre-run flag validation on that path too.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v",
					errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			setLogger(InitLogger(flags.Verbose, flags.Quiet, loadLogConfig(cmd.Context())))
			return nil
		},
		// Errors get their own formatting; cobra's usage dump on top of
		// them would drown the message.
		SilenceUsage: true,
	}

	AddGlobalFlags(cmd, flags)
	AddRunCommand(cmd)
	AddGraphCommand(cmd)

	return cmd
}

// loadLogConfig loads only the log section of the configuration for
// logger initialization. Config errors fall back to defaults silently:
// the logger must come up before any command can report problems, and
// the run command surfaces the full validation error itself.
func loadLogConfig(ctx context.Context) config.LogConfig {
	cfg, err := config.Load(ctx)
	if err != nil {
		return config.DefaultConfig().Log
	}
	return cfg.Log
}

// formatVersion renders the --version string, substituting placeholders
// for fields a local build leaves unset.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // cobra hands the context back through cmd.Context()
	cmd := newRootCmd(flags, info)
	return cmd.ExecuteContext(ctx)
}
