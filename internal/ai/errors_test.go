package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("provider failed")

func testProviderInfo() ProviderInfo {
	return ProviderInfo{
		Name:        "llm",
		InstallHint: "install the llm CLI",
		ErrType:     errSentinel,
		EnvVar:      "LLM_API_KEY",
	}
}

func TestWrapProviderError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		detail   string
		contains []string
	}{
		{
			name:     "command not found in detail",
			err:      errors.New("exit status 127"),
			detail:   "sh: llm: command not found",
			contains: []string{"llm not found", "install the llm CLI"},
		},
		{
			name:     "executable not found in error",
			err:      errors.New(`exec: "llm": executable file not found in $PATH`),
			contains: []string{"llm not found", "install the llm CLI"},
		},
		{
			name:     "api key detail",
			err:      errors.New("exit status 1"),
			detail:   "invalid api key provided",
			contains: []string{"API key error", "invalid api key provided"},
		},
		{
			name:     "env var mentioned in detail",
			err:      errors.New("exit status 1"),
			detail:   "LLM_API_KEY is not set",
			contains: []string{"API key error", "LLM_API_KEY"},
		},
		{
			name:     "plain detail",
			err:      errors.New("exit status 1"),
			detail:   "model overloaded",
			contains: []string{"model overloaded"},
		},
		{
			name:     "no detail falls back to error text",
			err:      errors.New("connection refused"),
			contains: []string{"connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapProviderError(testProviderInfo(), tt.err, []byte(tt.detail))

			require.ErrorIs(t, wrapped, errSentinel)
			for _, want := range tt.contains {
				assert.Contains(t, wrapped.Error(), want)
			}
		})
	}
}

func TestWrapProviderError_EmptyEnvVarNotMatched(t *testing.T) {
	// An empty EnvVar must not match every detail string.
	info := testProviderInfo()
	info.EnvVar = ""

	wrapped := WrapProviderError(info, errors.New("exit status 1"), []byte("something broke"))

	require.ErrorIs(t, wrapped, errSentinel)
	assert.NotContains(t, wrapped.Error(), "API key error")
	assert.Contains(t, wrapped.Error(), "something broke")
}
