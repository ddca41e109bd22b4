// Package domain provides shared domain types for the prmptr chain runner.
package domain

// Provider represents a generation backend type (e.g., "openai", "command").
// This determines how dynamic fragments get their completions.
type Provider string

// Provider constants define the supported generation backends.
const (
	// ProviderOpenAI sends chat-completion requests to an OpenAI-compatible API.
	ProviderOpenAI Provider = "openai"

	// ProviderCommand pipes the prompt to a configured CLI and reads stdout.
	ProviderCommand Provider = "command"
)

// String returns the string representation of the Provider.
// This implements fmt.Stringer for convenient logging and debugging.
func (p Provider) String() string {
	return string(p)
}

// IsValid checks if the provider is a recognized type.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderCommand:
		return true
	}
	return false
}

// DefaultModel returns the default model name for this provider.
// The command provider has no model concept; the configured CLI decides.
func (p Provider) DefaultModel() string {
	switch p {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return ""
	}
}

// APIKeyEnvVar returns the default environment variable name for the API key.
func (p Provider) APIKeyEnvVar() string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// InstallHint returns setup instructions for this provider.
func (p Provider) InstallHint() string {
	switch p {
	case ProviderOpenAI:
		return "Set OPENAI_API_KEY with a key from https://platform.openai.com/api-keys"
	case ProviderCommand:
		return "Configure generation.command with a CLI that reads a prompt on stdin"
	default:
		return "Unknown provider"
	}
}
