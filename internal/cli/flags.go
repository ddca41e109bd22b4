// Package cli provides the command-line interface for prmptr.
package cli

import (
	stderrors "errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greg-randall/prmptr/internal/errors"
)

// Process exit codes. Chain failures exit 1; anything the user typed
// wrong (flags, arguments, chain or input files the loader rejects)
// exits 2.
const (
	ExitSuccess = iota
	ExitError
	ExitInvalidInput
)

// Output format values accepted by --output.
const (
	// OutputText is the default human-readable format.
	OutputText = "text"
	// OutputJSON emits machine-readable JSON.
	OutputJSON = "json"
)

// GlobalFlags holds the persistent flags shared by every command.
type GlobalFlags struct {
	// Output selects the output format, text or json.
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet restricts logging to warnings and errors.
	Quiet bool
}

// AddGlobalFlags registers the persistent flags on cmd. Verbose and
// quiet contradict each other, so cobra rejects the combination.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds the persistent flags into v and turns on the
// PRMPTR_ environment prefix, so PRMPTR_OUTPUT and friends override the
// flag defaults.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Subcommand hooks call this too, and the flags live on the root.
	pf := cmd.Root().PersistentFlags()

	for _, name := range []string{"output", "verbose", "quiet"} {
		if err := v.BindPFlag(name, pf.Lookup(name)); err != nil {
			return errors.Wrapf(err, "bind %s flag", name)
		}
	}

	v.SetEnvPrefix("PRMPTR")
	v.AutomaticEnv()

	return nil
}

// ValidOutputFormats returns the accepted --output values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat reports whether format is an accepted --output value.
func IsValidOutputFormat(format string) bool {
	switch format {
	case OutputText, OutputJSON:
		return true
	default:
		return false
	}
}

// ExitCodeForError maps an error from Execute to a process exit code:
// nil is ExitSuccess, user mistakes are ExitInvalidInput, and everything
// else is ExitError.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.IsExitCode2Error(err),
		stderrors.Is(err, errors.ErrInvalidOutputFormat),
		isUsageError(err):
		return ExitInvalidInput
	default:
		return ExitError
	}
}

// isUsageError recognizes cobra's own flag and argument validation
// failures, which surface as plain errors with fixed message shapes.
func isUsageError(err error) bool {
	patterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"required flag",
		"unknown command",
		"accepts 1 arg",
		"accepts 2 arg",
	}

	msg := err.Error()
	for _, pattern := range patterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
