// Package constants provides centralized constant values used throughout prmptr.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Reserved fragment names in a prompt chain.
const (
	// InputName is the reserved fragment name whose resolved value is the
	// initial input text. It is seeded before execution starts and must
	// never be defined by a chain file.
	InputName = "input text"

	// OutputName is the fragment every chain must define. Its resolved
	// value is the final result of a run.
	OutputName = "output"
)

// Generation defaults used when configuration does not override them.
const (
	// DefaultModel is the model requested when none is configured.
	DefaultModel = "gpt-4o-mini"

	// DefaultSystemPrompt instructs the model to treat each substituted
	// fragment as literal instructions.
	DefaultSystemPrompt = "You are a helpful assistant. Please follow the instructions exactly."

	// DefaultBaseURL is the OpenAI-compatible API root for chat completions.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultAPIKeyEnvVar names the environment variable read for the API key.
	DefaultAPIKeyEnvVar = "OPENAI_API_KEY"

	// DefaultGenerationTimeout bounds a single generation request.
	DefaultGenerationTimeout = 120 * time.Second
)

// Directory names and paths used by prmptr for organizing data.
const (
	// PrmptrHome is the hidden directory name where prmptr stores all its data.
	// This directory is created in the user's home directory.
	PrmptrHome = ".prmptr"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Log rotation defaults for the CLI log file.
const (
	// DefaultLogMaxSizeMB is the size at which the log file rotates.
	DefaultLogMaxSizeMB = 10

	// DefaultLogMaxBackups is the number of rotated files kept on disk.
	DefaultLogMaxBackups = 5

	// DefaultLogMaxAgeDays is the age after which rotated files are removed.
	DefaultLogMaxAgeDays = 30
)

// Artifact naming for completed runs.
const (
	// OutputFileSuffix ends the artifact holding the final resolved output.
	OutputFileSuffix = "_output.txt"

	// ChainLogFileSuffix ends the artifact holding the step-by-step chain log.
	ChainLogFileSuffix = "_promptchain.log"

	// ArtifactTimestampLayout formats the timestamp prefix on artifact names.
	ArtifactTimestampLayout = "2006-01-02_15-04-05"
)
