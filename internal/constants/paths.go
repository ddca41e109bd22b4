package constants

// HomeEnvVar relocates the prmptr home directory (default ~/.prmptr).
// Configuration and logs both live under it.
const HomeEnvVar = "PRMPTR_HOME"

// File names under the prmptr home directory.
const (
	// CLILogFileName is the rotating CLI log file, written under
	// <home>/logs/.
	CLILogFileName = "prmptr.log"

	// GlobalConfigName is the global configuration file inside the
	// prmptr home.
	GlobalConfigName = "config.yaml"
)

// ProjectConfigName is the per-project configuration file, read from the
// directory a chain runs from rather than the prmptr home.
const ProjectConfigName = ".prmptr.yaml"
