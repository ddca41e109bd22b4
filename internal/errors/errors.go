// Package errors provides centralized error handling for prmptr.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrNoDefinitions indicates the chain source contained no fragment
	// definitions at all and cannot describe a chain.
	ErrNoDefinitions = errors.New("no fragment definitions found")

	// ErrDuplicateDefinition indicates a fragment name was defined more
	// than once and strict mode rejects the redefinition.
	ErrDuplicateDefinition = errors.New("fragment defined more than once")

	// ErrReservedName indicates a chain file defines the reserved input
	// fragment, whose value is always supplied by the caller.
	ErrReservedName = errors.New("fragment name is reserved")

	// ErrMissingOutputNode indicates the chain never defines the output
	// fragment, so there is nothing to resolve toward.
	ErrMissingOutputNode = errors.New("output fragment not defined")

	// ErrCyclicDependency indicates fragment references form a cycle and
	// no execution order exists.
	ErrCyclicDependency = errors.New("cyclic dependency detected")

	// ErrMissingDependency indicates a fragment referenced a value that
	// was not resolved before substitution. Execution order guarantees
	// dependencies resolve first, so this signals a corrupted run.
	ErrMissingDependency = errors.New("dependency value not resolved")

	// ErrGenerationFailed indicates the generation call for a fragment
	// returned an error. The run stops; dependents are never attempted.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrEmptyCompletion indicates the provider returned an empty or
	// whitespace-only completion.
	ErrEmptyCompletion = errors.New("provider returned empty completion")

	// ErrMissingOutput indicates execution finished without producing a
	// resolved value for the output fragment.
	ErrMissingOutput = errors.New("no resolved value for output fragment")

	// ErrChainFileMissing indicates the chain file does not exist.
	ErrChainFileMissing = errors.New("chain file not found")

	// ErrChainFileUnreadable indicates the chain file exists but could not be read.
	ErrChainFileUnreadable = errors.New("chain file not readable")

	// ErrChainFileParse indicates the chain file has invalid YAML syntax.
	ErrChainFileParse = errors.New("chain file parse error")

	// ErrInputFileMissing indicates the initial input file does not exist.
	ErrInputFileMissing = errors.New("input file not found")

	// ErrProviderNotFound indicates no generator is registered under the
	// requested provider name.
	ErrProviderNotFound = errors.New("provider not registered")

	// ErrAPIKeyMissing indicates the configured API key environment
	// variable is unset or empty.
	ErrAPIKeyMissing = errors.New("api key not set")

	// ErrProviderRequest indicates the provider endpoint rejected the
	// request or could not be reached.
	ErrProviderRequest = errors.New("provider request failed")

	// ErrCommandNotConfigured indicates the command provider was selected
	// without a generation.command value to execute.
	ErrCommandNotConfigured = errors.New("command not configured")

	// ErrCommandFailed indicates that a command execution failed.
	ErrCommandFailed = errors.New("command failed")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidGeneration indicates an invalid generation configuration value.
	ErrConfigInvalidGeneration = errors.New("invalid generation configuration")

	// ErrConfigInvalidRun indicates an invalid run configuration value.
	ErrConfigInvalidRun = errors.New("invalid run configuration")

	// ErrConfigInvalidLog indicates an invalid log configuration value.
	ErrConfigInvalidLog = errors.New("invalid log configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrArtifactWrite indicates a run artifact could not be written.
	ErrArtifactWrite = errors.New("artifact write failed")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// Commands return it wrapped around the original failure: the sentinel tells
	// the caller to silence cobra's error printing, while the wrapped cause keeps
	// the exit code mapping intact.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
