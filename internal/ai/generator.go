// Package ai provides the generation backends that resolve dynamic
// fragments into values.
//
// This package defines the Generator interface for executing generation
// requests and provides the OpenAIGenerator and CommandGenerator
// implementations. internal/chain declares its own structurally identical
// Generator interface, so any generator built here plugs straight into the
// execution engine.
//
// IMPORTANT: This package may import internal/constants, internal/errors,
// internal/config, internal/ctxutil, and internal/domain. It MUST NOT
// import internal/chain or internal/cli.
package ai

import (
	"context"

	"github.com/greg-randall/prmptr/internal/domain"
)

// Generator defines the interface for generation backends.
// Implementations turn one fully substituted prompt into a value.
//
// Context should be used to control timeouts and cancellation.
// The implementation should check ctx.Done() for long-running operations.
type Generator interface {
	// Generate executes a generation request and returns the result.
	// The context controls timeout and cancellation.
	// Returns an error wrapped with a provider sentinel on failure.
	Generate(ctx context.Context, req *domain.GenRequest) (*domain.GenResult, error)
}
