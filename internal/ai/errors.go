package ai

import (
	"fmt"
	"strings"
)

// ProviderInfo carries what a generator needs to turn raw failures into
// messages that name the provider and point at a fix.
type ProviderInfo struct {
	Name        string // provider name, "openai" or "command"
	InstallHint string // shown when the provider binary is missing
	ErrType     error  // sentinel every wrapped error matches
	EnvVar      string // API key environment variable, if the provider uses one
}

// WrapProviderError turns a raw generation failure into an error that
// matches info.ErrType under errors.Is and carries whatever detail the
// provider produced (stderr for commands, response bodies for HTTP).
// Missing binaries and API key problems get recognized and rephrased;
// everything else passes through with the detail attached.
func WrapProviderError(info ProviderInfo, err error, detail []byte) error {
	detailStr := strings.TrimSpace(string(detail))

	switch {
	case strings.Contains(detailStr, "command not found"),
		strings.Contains(err.Error(), "executable file not found"):
		return fmt.Errorf("%w: %s not found - %s", info.ErrType, info.Name, info.InstallHint)

	case strings.Contains(detailStr, "api key"),
		strings.Contains(detailStr, "API key"),
		strings.Contains(detailStr, "authentication"),
		info.EnvVar != "" && strings.Contains(detailStr, info.EnvVar):
		return fmt.Errorf("%w: API key error: %s", info.ErrType, detailStr)

	case detailStr != "":
		return fmt.Errorf("%w: %s", info.ErrType, detailStr)

	default:
		return fmt.Errorf("%w: %s", info.ErrType, err.Error())
	}
}
