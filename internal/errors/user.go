package errors

import "errors"

// ErrorInfo is what the CLI shows for a recognized error: a plain
// description and, when one exists, a way out.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action suggests how to resolve the problem. Empty when there is
	// nothing useful to suggest.
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps every sentinel to its user-facing text, keeping
// UserMessage and Actionable in sync. A slice rather than a map: lookup
// goes through errors.Is so wrapped sentinels still match.
//
//nolint:gochecknoglobals // fixed lookup table
var errorInfoEntries = []errorEntry{
	// ===================
	// Chain Structure
	// ===================
	{
		err: ErrNoDefinitions,
		info: ErrorInfo{
			Message: "The chain file contains no fragment definitions.",
			Action:  "Define at least one fragment with '[[name]] = text', including '[[output]]'.",
		},
	},
	{
		err: ErrDuplicateDefinition,
		info: ErrorInfo{
			Message: "A fragment is defined more than once.",
			Action:  "Remove the duplicate definitions, or drop --strict to keep the last one.",
		},
	},
	{
		err: ErrReservedName,
		info: ErrorInfo{
			Message: "The chain file defines the reserved input fragment.",
			Action:  "Rename the fragment; '[[input text]]' always holds the input file contents.",
		},
	},
	{
		err: ErrMissingOutputNode,
		info: ErrorInfo{
			Message: "The chain never defines the '[[output]]' fragment.",
			Action:  "Add an '[[output]] = ...' definition; it is the final result of the run.",
		},
	},
	{
		err: ErrCyclicDependency,
		info: ErrorInfo{
			Message: "Fragment references form a cycle, so no execution order exists.",
			Action:  "Run 'prmptr graph <chain-file>' to inspect the references and break the loop.",
		},
	},
	{
		err: ErrMissingDependency,
		info: ErrorInfo{
			Message: "A fragment referenced a value that was never resolved.",
			Action:  "Check that every '[[name]]' reference matches a defined fragment.",
		},
	},

	// ===================
	// Generation
	// ===================
	{
		err: ErrGenerationFailed,
		info: ErrorInfo{
			Message: "A generation request failed. No output files were written.",
			Action:  "Review the error details; the chain can be rerun from the start.",
		},
	},
	{
		err: ErrEmptyCompletion,
		info: ErrorInfo{
			Message: "The provider returned an empty completion.",
			Action:  "Rerun the chain. If it keeps happening, check the model name and your quota.",
		},
	},
	{
		err: ErrMissingOutput,
		info: ErrorInfo{
			Message: "Execution finished without resolving the '[[output]]' fragment.",
			Action:  "Run 'prmptr graph <chain-file>' to verify 'output' is reachable.",
		},
	},
	{
		err: ErrProviderNotFound,
		info: ErrorInfo{
			Message: "The specified provider is not available.",
			Action:  "Use --provider openai or --provider command.",
		},
	},
	{
		err: ErrAPIKeyMissing,
		info: ErrorInfo{
			Message: "The provider API key is not set.",
			Action:  "Export OPENAI_API_KEY (or the configured variable) and retry.",
		},
	},
	{
		err: ErrProviderRequest,
		info: ErrorInfo{
			Message: "The provider request failed. Check your API key and network.",
			Action:  "Verify the endpoint, key, and network access, then retry.",
		},
	},
	{
		err: ErrCommandFailed,
		info: ErrorInfo{
			Message: "The generation command exited with an error.",
			Action:  "Check that the configured command is installed and runs standalone.",
		},
	},

	// ===================
	// Files
	// ===================
	{
		err: ErrChainFileMissing,
		info: ErrorInfo{
			Message: "The chain file does not exist.",
			Action:  "Check the file path and ensure the chain file exists.",
		},
	},
	{
		err: ErrChainFileUnreadable,
		info: ErrorInfo{
			Message: "The chain file exists but could not be read.",
			Action:  "Check the file permissions.",
		},
	},
	{
		err: ErrChainFileParse,
		info: ErrorInfo{
			Message: "The chain file has invalid YAML syntax.",
			Action:  "Check the chain file for YAML syntax errors.",
		},
	},
	{
		err: ErrInputFileMissing,
		info: ErrorInfo{
			Message: "The input file does not exist.",
			Action:  "Check the file path and ensure the input file exists.",
		},
	},
	{
		err: ErrArtifactWrite,
		info: ErrorInfo{
			Message: "Could not write the run output files.",
			Action:  "Ensure the output directory exists and is writable.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "No configuration was loaded.",
			Action:  "Ensure ~/.prmptr/config.yaml exists and is valid YAML.",
		},
	},
	{
		err: ErrConfigInvalidGeneration,
		info: ErrorInfo{
			Message: "Invalid generation configuration.",
			Action:  "Check the 'generation' section of your config for invalid values.",
		},
	},
	{
		err: ErrConfigInvalidRun,
		info: ErrorInfo{
			Message: "Invalid run configuration.",
			Action:  "Check the 'run' section of your config for invalid values.",
		},
	},
	{
		err: ErrConfigInvalidLog,
		info: ErrorInfo{
			Message: "Invalid log configuration.",
			Action:  "Check the 'log' section of your config for invalid values.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format specified.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value is empty.",
			Action:  "Supply a non-empty value and retry.",
		},
	},
}

// getErrorInfo finds the entry err matches, walking the wrap chain.
// Errors outside the table fall back to their own message, with no
// suggested action.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage translates err into the description shown to the user.
// Unrecognized errors pass through as err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns the user-facing description plus a suggested fix.
// The action is empty when the table has none for this error.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
