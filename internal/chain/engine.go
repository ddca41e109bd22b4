package chain

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/greg-randall/prmptr/internal/constants"
	"github.com/greg-randall/prmptr/internal/ctxutil"
	"github.com/greg-randall/prmptr/internal/domain"
	prmptrerrors "github.com/greg-randall/prmptr/internal/errors"
	"github.com/greg-randall/prmptr/internal/logging"
)

// Generator produces a value for one substituted prompt. The providers in
// internal/ai satisfy it. The engine fills only Fragment and Prompt on the
// request; model, system prompt, and timeout defaults belong to the
// provider.
type Generator interface {
	Generate(ctx context.Context, req *domain.GenRequest) (*domain.GenResult, error)
}

// Observer receives progress callbacks during a run. Parallel mode invokes
// it from worker goroutines, so implementations must be safe for
// concurrent use.
type Observer interface {
	// StepStarted fires when a fragment begins resolving.
	StepStarted(name string, static bool)

	// StepCompleted fires after a fragment resolves successfully.
	StepCompleted(name string, static bool, duration time.Duration)
}

// nopObserver is the default observer.
type nopObserver struct{}

var _ Observer = nopObserver{}

func (nopObserver) StepStarted(string, bool)                  {}
func (nopObserver) StepCompleted(string, bool, time.Duration) {}

// Engine executes a parsed chain against a Generator. It walks either the
// sequential execution order or the depth levels, substitutes resolved
// dependency values into each template, and accumulates the resolved value
// map plus the step log.
type Engine struct {
	generator Generator
	logger    zerolog.Logger
	observer  Observer
	workers   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds concurrent generation calls within a level in
// parallel mode. Values below 1 mean one worker per available CPU.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithObserver sets the progress observer. A nil observer is ignored.
func WithObserver(obs Observer) Option {
	return func(e *Engine) {
		if obs != nil {
			e.observer = obs
		}
	}
}

// NewEngine creates an engine with the given generator and logger.
func NewEngine(generator Generator, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		generator: generator,
		logger:    logger,
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOptions control one chain execution.
type RunOptions struct {
	// Parallel executes depth levels with bounded workers instead of
	// walking the sequential order.
	Parallel bool
}

// Result holds the outcome of a successful chain execution.
type Result struct {
	// RunID identifies this execution in logs and summaries.
	RunID string `json:"run_id"`

	// FinalValue is the resolved value of the output fragment.
	FinalValue string `json:"final_value"`

	// Values maps every resolved fragment to its value, including the
	// reserved input entry.
	Values map[string]string `json:"values"`

	// Log records one entry per resolved fragment in completion order.
	Log *StepLog `json:"-"`

	// Duration is the wall-clock run time.
	Duration time.Duration `json:"duration"`
}

// Run executes the chain described by doc and g, seeding the resolved
// value map with the initial input under the reserved input name.
//
// On any failure the run aborts and no Result is returned: partial values
// must not be treated as a complete run. Failures are never retried here;
// every condition is terminal for the run.
func (e *Engine) Run(ctx context.Context, doc *Document, g Graph, input string, opts RunOptions) (*Result, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	runID := "run-" + uuid.New().String()[:8]
	logger := e.logger.With().Str("run_id", runID).Logger()

	if _, ok := g[constants.OutputName]; !ok {
		return nil, prmptrerrors.Wrapf(prmptrerrors.ErrMissingOutputNode,
			"fragment %q", constants.OutputName)
	}

	logger.Info().
		Int("fragments", len(g)).
		Bool("parallel", opts.Parallel).
		Msg("starting chain run")

	values := map[string]string{constants.InputName: input}
	stepLog := &StepLog{}
	start := time.Now()

	var err error
	if opts.Parallel {
		err = e.runParallel(ctx, logger, doc, g, values, stepLog)
	} else {
		err = e.runSequential(ctx, logger, doc, g, values, stepLog)
	}
	if err != nil {
		return nil, err
	}

	final, ok := values[constants.OutputName]
	if !ok {
		return nil, prmptrerrors.Wrapf(prmptrerrors.ErrMissingOutput,
			"fragment %q", constants.OutputName)
	}

	duration := time.Since(start)
	logger.Info().
		Int("steps", stepLog.Len()).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("chain run completed")

	return &Result{
		RunID:      runID,
		FinalValue: final,
		Values:     values,
		Log:        stepLog,
		Duration:   duration,
	}, nil
}

// runSequential walks the output-rooted execution order one fragment at a
// time, appending one log entry per fragment.
func (e *Engine) runSequential(ctx context.Context, logger zerolog.Logger, doc *Document, g Graph, values map[string]string, stepLog *StepLog) error {
	order, err := g.ExecutionOrder(constants.OutputName)
	if err != nil {
		return err
	}

	logger.Debug().Strs("order", order).Msg("execution order resolved")

	for _, name := range order {
		if err := ctxutil.Canceled(ctx); err != nil {
			return err
		}

		entry, err := e.resolveFragment(ctx, logger, doc, g, name, values)
		if err != nil {
			return err
		}

		values[name] = entry.Value
		stepLog.Append(entry)
	}
	return nil
}

// runParallel walks the depth levels in ascending order, dispatching each
// level's fragments to a bounded worker group and waiting for the whole
// level before starting the next. On the first failure in a level no
// further levels start; Wait still joins every dispatched worker.
func (e *Engine) runParallel(ctx context.Context, logger zerolog.Logger, doc *Document, g Graph, values map[string]string, stepLog *StepLog) error {
	// The parallel path executes every key, so the whole graph must be
	// acyclic, not only the output-rooted subgraph.
	if err := g.Validate(); err != nil {
		return err
	}

	levels := g.Levels()
	workers := e.workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	logger.Debug().
		Int("levels", len(levels)).
		Int("workers", workers).
		Msg("depth levels resolved")

	for depth, level := range levels {
		if err := ctxutil.Canceled(ctx); err != nil {
			return err
		}

		logger.Debug().
			Int("depth", depth).
			Strs("fragments", level).
			Msg("dispatching level")

		// Workers only read values; results land here under the mutex and
		// merge after the barrier, so later levels see every write.
		resolved := make(map[string]string, len(level))
		var mu sync.Mutex

		grp, gctx := errgroup.WithContext(ctx)
		grp.SetLimit(workers)

		for _, name := range level {
			name := name
			grp.Go(func() error {
				if err := ctxutil.Canceled(gctx); err != nil {
					return err
				}

				entry, err := e.resolveFragment(gctx, logger, doc, g, name, values)
				if err != nil {
					return err
				}

				mu.Lock()
				resolved[name] = entry.Value
				mu.Unlock()
				stepLog.Append(entry)
				return nil
			})
		}

		if err := grp.Wait(); err != nil {
			return err
		}

		maps.Copy(values, resolved)
	}
	return nil
}

// resolveFragment computes the value for one fragment. values is only
// read, never written; recording the produced value is the caller's job.
// That keeps this method safe to run concurrently for the fragments of one
// level, whose dependencies were all resolved by earlier levels.
func (e *Engine) resolveFragment(ctx context.Context, logger zerolog.Logger, doc *Document, g Graph, name string, values map[string]string) (Entry, error) {
	template, ok := doc.Template(name)
	if !ok {
		// Graph keys always come from the document; a miss means the graph
		// was built from a different document.
		return Entry{}, prmptrerrors.Wrapf(prmptrerrors.ErrMissingDependency,
			"fragment %q has no definition", name)
	}

	deps := g[name]
	static := len(deps) == 0
	e.observer.StepStarted(name, static)
	start := time.Now()

	if static {
		logger.Debug().Str("fragment", name).Msg("static fragment, using content directly")
		e.observer.StepCompleted(name, true, time.Since(start))
		return Entry{Name: name, Static: true, Value: template}, nil
	}

	// Substitution is a single literal pass per dependency. ReplaceAll
	// covers duplicate occurrences; substituted text is never re-scanned.
	prompt := template
	for _, dep := range deps {
		value, present := values[dep]
		if !present {
			return Entry{}, prmptrerrors.Wrapf(prmptrerrors.ErrMissingDependency,
				"fragment %q references %q", name, dep)
		}
		prompt = strings.ReplaceAll(prompt, "[["+dep+"]]", value)
	}

	// Full prompts belong in the chain log artifact; the log file only
	// gets a redacted excerpt.
	logger.Debug().
		Str("fragment", name).
		Str("prompt_preview", logging.SafeValue("prompt_preview", promptPreview(prompt))).
		Msg("prompt substituted")

	logger.Info().
		Str("fragment", name).
		Int("prompt_len", len(prompt)).
		Msg("sending prompt to generator")

	res, err := e.generator.Generate(ctx, &domain.GenRequest{
		Fragment: name,
		Prompt:   prompt,
	})
	duration := time.Since(start)
	if err != nil {
		logger.Error().
			Str("fragment", name).
			Int64("duration_ms", duration.Milliseconds()).
			Err(err).
			Msg("generation failed")
		return Entry{}, fmt.Errorf("%w: fragment %q: %w",
			prmptrerrors.ErrGenerationFailed, name, err)
	}

	logger.Info().
		Str("fragment", name).
		Int("response_len", len(res.Output)).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("generator response received")

	e.observer.StepCompleted(name, false, duration)
	return Entry{Name: name, Static: false, Prompt: prompt, Value: res.Output}, nil
}

// promptPreviewLen bounds the prompt excerpt written to debug logs.
const promptPreviewLen = 120

// promptPreview truncates p for logging, backing up to a rune boundary
// so the excerpt stays valid UTF-8.
func promptPreview(p string) string {
	if len(p) <= promptPreviewLen {
		return p
	}
	cut := promptPreviewLen
	for cut > 0 && !utf8.RuneStart(p[cut]) {
		cut--
	}
	return p[:cut] + "..."
}
