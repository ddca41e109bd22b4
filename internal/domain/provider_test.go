package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvider_String(t *testing.T) {
	t.Run("returns string representation for openai", func(t *testing.T) {
		assert.Equal(t, "openai", ProviderOpenAI.String())
	})

	t.Run("returns string representation for command", func(t *testing.T) {
		assert.Equal(t, "command", ProviderCommand.String())
	})

	t.Run("returns empty string for empty provider", func(t *testing.T) {
		var p Provider
		assert.Empty(t, p.String())
	})
}

func TestProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		want     bool
	}{
		{"openai is valid", ProviderOpenAI, true},
		{"command is valid", ProviderCommand, true},
		{"empty is invalid", Provider(""), false},
		{"unknown is invalid", Provider("unknown"), false},
		{"anthropic is invalid", Provider("anthropic"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.provider.IsValid()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvider_DefaultModel(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		want     string
	}{
		{"openai default is gpt-4o-mini", ProviderOpenAI, "gpt-4o-mini"},
		{"command has no default model", ProviderCommand, ""},
		{"empty provider has no default", Provider(""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.provider.DefaultModel()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvider_APIKeyEnvVar(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		want     string
	}{
		{"openai uses OPENAI_API_KEY", ProviderOpenAI, "OPENAI_API_KEY"},
		{"command needs no key", ProviderCommand, ""},
		{"unknown has no key", Provider("unknown"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.provider.APIKeyEnvVar()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvider_InstallHint(t *testing.T) {
	t.Run("openai hint mentions the key", func(t *testing.T) {
		assert.Contains(t, ProviderOpenAI.InstallHint(), "OPENAI_API_KEY")
	})

	t.Run("command hint mentions stdin", func(t *testing.T) {
		assert.Contains(t, ProviderCommand.InstallHint(), "stdin")
	})

	t.Run("unknown provider", func(t *testing.T) {
		assert.Equal(t, "Unknown provider", Provider("x").InstallHint())
	})
}
