package ai

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/greg-randall/prmptr/internal/config"
	"github.com/greg-randall/prmptr/internal/constants"
	"github.com/greg-randall/prmptr/internal/domain"
)

// CommandExecutor abstracts command execution for testing.
// The production implementation uses exec.Cmd to run subprocesses,
// while tests can provide a mock implementation.
//
// The ctx parameter is included for interface consistency and future flexibility,
// even though the current implementation embeds context via exec.CommandContext().
// Mock implementations may use ctx to simulate cancellation behavior.
type CommandExecutor interface {
	// Execute runs the command and returns stdout, stderr, and any error.
	// The context is passed for mock implementations that need cancellation awareness.
	Execute(ctx context.Context, cmd *exec.Cmd) (stdout, stderr []byte, err error)
}

// DefaultExecutor is the production implementation of CommandExecutor.
// It runs commands using the operating system's process execution.
type DefaultExecutor struct{}

// Execute runs the command and captures its output.
func (e *DefaultExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// resolveTimeout determines the timeout to use for a request.
// Priority: request timeout > config timeout > default timeout.
func resolveTimeout(req *domain.GenRequest, cfg *config.GenerationConfig) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	if cfg != nil && cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return constants.DefaultGenerationTimeout
}

// resolveModel determines the model to request.
// Priority: request model > config model > default model.
func resolveModel(req *domain.GenRequest, cfg *config.GenerationConfig) string {
	if req.Model != "" {
		return req.Model
	}
	if cfg != nil && cfg.Model != "" {
		return cfg.Model
	}
	return constants.DefaultModel
}

// resolveSystemPrompt determines the system prompt to send.
// Priority: request system prompt > config system prompt > default.
func resolveSystemPrompt(req *domain.GenRequest, cfg *config.GenerationConfig) string {
	if req.SystemPrompt != "" {
		return req.SystemPrompt
	}
	if cfg != nil && cfg.SystemPrompt != "" {
		return cfg.SystemPrompt
	}
	return constants.DefaultSystemPrompt
}
