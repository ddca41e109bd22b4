package ai

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/greg-randall/prmptr/internal/config"
	"github.com/greg-randall/prmptr/internal/ctxutil"
	"github.com/greg-randall/prmptr/internal/domain"
	prmptrerrors "github.com/greg-randall/prmptr/internal/errors"
)

// CommandGenerator resolves prompts by piping them to a configured CLI.
// The substituted prompt is written to the command's stdin and trimmed
// stdout becomes the fragment's value. This supports local model CLIs such
// as `claude -p` or `ollama run` without any API plumbing here.
type CommandGenerator struct {
	cfg      *config.GenerationConfig
	executor CommandExecutor
	logger   zerolog.Logger
}

// CommandOption is a functional option for configuring CommandGenerator.
type CommandOption func(*CommandGenerator)

// WithCommandLogger sets the logger for the CommandGenerator.
func WithCommandLogger(logger zerolog.Logger) CommandOption {
	return func(g *CommandGenerator) {
		g.logger = logger
	}
}

// NewCommandGenerator creates a generator that shells out to the configured
// command. If executor is nil, a DefaultExecutor is used for production
// subprocess execution.
func NewCommandGenerator(cfg *config.GenerationConfig, executor CommandExecutor, opts ...CommandOption) *CommandGenerator {
	if executor == nil {
		executor = &DefaultExecutor{}
	}
	g := &CommandGenerator{
		cfg:      cfg,
		executor: executor,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// providerInfo builds the error metadata for the configured command.
func (g *CommandGenerator) providerInfo() ProviderInfo {
	name := "command"
	if g.cfg != nil && g.cfg.Command != "" {
		name = g.cfg.Command
	}
	return ProviderInfo{
		Name:        name,
		InstallHint: "configure generation.command with a CLI on your PATH that reads a prompt on stdin",
		ErrType:     prmptrerrors.ErrCommandFailed,
	}
}

// Generate runs the configured command with the prompt on stdin and
// returns trimmed stdout as the value.
func (g *CommandGenerator) Generate(ctx context.Context, req *domain.GenRequest) (*domain.GenResult, error) {
	// Check cancellation at entry
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if g.cfg == nil || g.cfg.Command == "" {
		return nil, fmt.Errorf("%w: generation.command is empty", prmptrerrors.ErrCommandNotConfigured)
	}

	timeout := resolveTimeout(req, g.cfg)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := g.buildCommand(runCtx, req)

	g.logger.Debug().
		Str("fragment", req.Fragment).
		Str("command", g.cfg.Command).
		Dur("timeout", timeout).
		Msg("piping prompt to command")

	start := time.Now()
	stdout, stderr, err := g.executor.Execute(runCtx, cmd)
	duration := time.Since(start)
	if err != nil {
		// Cancellation wins over whatever the dying process wrote.
		if ctxErr := runCtx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, WrapProviderError(g.providerInfo(), err, stderr)
	}

	output := strings.TrimSpace(string(stdout))
	if output == "" {
		return nil, fmt.Errorf("%w: fragment %q", prmptrerrors.ErrEmptyCompletion, req.Fragment)
	}

	g.logger.Debug().
		Str("fragment", req.Fragment).
		Int("response_len", len(output)).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("command completed")

	return &domain.GenResult{
		Output:     output,
		Model:      resolveModel(req, g.cfg),
		DurationMs: int(duration.Milliseconds()),
	}, nil
}

// buildCommand constructs the subprocess with the prompt on stdin.
func (g *CommandGenerator) buildCommand(ctx context.Context, req *domain.GenRequest) *exec.Cmd {
	//nolint:gosec // The command comes from the user's own configuration
	cmd := exec.CommandContext(ctx, g.cfg.Command, g.cfg.CommandArgs...)
	cmd.Stdin = strings.NewReader(req.Prompt)
	return cmd
}

// Compile-time check that CommandGenerator implements Generator.
var _ Generator = (*CommandGenerator)(nil)
