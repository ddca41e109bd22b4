package config

import (
	"os"
	"path/filepath"

	"github.com/greg-randall/prmptr/internal/constants"
	"github.com/greg-randall/prmptr/internal/errors"
)

// GlobalConfigDir returns the prmptr home directory, which holds state
// that outlives a single run: the global config file and the logs.
// PRMPTR_HOME overrides the default ~/.prmptr.
func GlobalConfigDir() (string, error) {
	if h := os.Getenv(constants.HomeEnvVar); h != "" {
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, constants.PrmptrHome), nil
}

// GlobalConfigPath returns the global configuration file path inside
// the prmptr home.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the project configuration file name. It is
// resolved relative to the working directory, so running the same chain
// from two directories can pick up two different project configs.
func ProjectConfigPath() string {
	return constants.ProjectConfigName
}
