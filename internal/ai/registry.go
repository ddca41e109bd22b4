package ai

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/greg-randall/prmptr/internal/config"
	"github.com/greg-randall/prmptr/internal/domain"
	prmptrerrors "github.com/greg-randall/prmptr/internal/errors"
)

// Registry holds the generators available to a run, keyed by provider.
// Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	generators map[domain.Provider]Generator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[domain.Provider]Generator),
	}
}

// Register adds a generator under the given provider, replacing any
// earlier registration.
func (r *Registry) Register(provider domain.Provider, generator Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[provider] = generator
}

// Get returns the generator for a provider, or ErrProviderNotFound when
// nothing is registered under it.
func (r *Registry) Get(provider domain.Provider) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	generator, ok := r.generators[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", prmptrerrors.ErrProviderNotFound, provider)
	}
	return generator, nil
}

// Has reports whether a generator is registered for the provider.
func (r *Registry) Has(provider domain.Provider) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.generators[provider]
	return ok
}

// Providers lists the registered provider keys, in no particular order.
func (r *Registry) Providers() []domain.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]domain.Provider, 0, len(r.generators))
	for p := range r.generators {
		providers = append(providers, p)
	}
	return providers
}

// NewRegistryFromConfig builds a registry holding every generator the
// configuration can support. The OpenAI generator is always available; the
// command generator is registered only when a command is configured.
func NewRegistryFromConfig(cfg *config.GenerationConfig, logger zerolog.Logger) *Registry {
	reg := NewRegistry()
	reg.Register(domain.ProviderOpenAI, NewOpenAIGenerator(cfg, WithOpenAILogger(logger)))
	if cfg != nil && cfg.Command != "" {
		reg.Register(domain.ProviderCommand, NewCommandGenerator(cfg, nil, WithCommandLogger(logger)))
	}
	return reg
}

// NewGenerator builds the generator selected by cfg.Provider.
// Returns ErrProviderNotFound when the configured provider is unknown or,
// for the command provider, not configured with a command.
func NewGenerator(cfg *config.GenerationConfig, logger zerolog.Logger) (Generator, error) {
	provider := domain.ProviderOpenAI
	if cfg != nil && cfg.Provider != "" {
		provider = domain.Provider(cfg.Provider)
	}
	return NewRegistryFromConfig(cfg, logger).Get(provider)
}
