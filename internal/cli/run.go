// Package cli provides the command-line interface for prmptr.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/greg-randall/prmptr/internal/ai"
	"github.com/greg-randall/prmptr/internal/chain"
	"github.com/greg-randall/prmptr/internal/chainfile"
	"github.com/greg-randall/prmptr/internal/clock"
	"github.com/greg-randall/prmptr/internal/config"
	"github.com/greg-randall/prmptr/internal/constants"
	prmptrerrors "github.com/greg-randall/prmptr/internal/errors"
	"github.com/greg-randall/prmptr/internal/signal"
)

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command) {
	root.AddCommand(newRunCmd())
}

// runOptions contains all options for the run command.
type runOptions struct {
	parallel    bool
	workers     int
	provider    string
	model       string
	strict      bool
	dryRun      bool
	noSave      bool
	artifactDir string
}

// newRunCmd creates the run command.
func newRunCmd() *cobra.Command {
	var (
		parallel    bool
		workers     int
		provider    string
		model       string
		strict      bool
		dryRun      bool
		noSave      bool
		artifactDir string
	)

	cmd := &cobra.Command{
		Use:   "run <chain-file> <input-file>",
		Short: "Resolve a prompt chain against an input file",
		Long: `Run parses the chain file, builds the dependency graph from [[name]]
references, computes a cycle-checked execution order rooted at the
output fragment, and resolves each fragment in turn. Static fragments
use their text directly; dynamic fragments are substituted and sent to
the generation backend.

The input file's contents seed the reserved '[[input text]]' fragment.
Successful runs write two timestamped files next to the input: the
resolved output and a full chain log. Failed runs write nothing.

Examples:
  prmptr run chain.txt article.txt
  prmptr run chain.txt article.txt --parallel --workers 4
  prmptr run chain.yaml article.txt --provider command
  prmptr run chain.txt article.txt --model gpt-4o --strict
  prmptr run chain.txt article.txt --dry-run
  prmptr run chain.txt article.txt --no-save --output json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRun(cmd.Context(), cmd, cmd.OutOrStdout(), args[0], args[1], runOptions{
				parallel:    parallel,
				workers:     workers,
				provider:    provider,
				model:       model,
				strict:      strict,
				dryRun:      dryRun,
				noSave:      noSave,
				artifactDir: artifactDir,
			})
			// If JSON error was already output, silence cobra's error printing
			// but still return error for non-zero exit code
			if stderrors.Is(err, prmptrerrors.ErrJSONErrorOutput) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&parallel, "parallel", "p", false,
		"Resolve depth levels with bounded workers instead of one fragment at a time")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0,
		"Concurrent generation calls per level in parallel mode (0 = one per CPU)")
	cmd.Flags().StringVar(&provider, "provider", "",
		"Generation backend (openai, command)")
	cmd.Flags().StringVarP(&model, "model", "m", "",
		"Model to request from the provider")
	cmd.Flags().BoolVar(&strict, "strict", false,
		"Fail on duplicate fragment definitions instead of keeping the last")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Show the execution plan without calling the provider or writing files")
	cmd.Flags().BoolVar(&noSave, "no-save", false,
		"Skip writing the output and chain-log files")
	cmd.Flags().StringVar(&artifactDir, "artifact-dir", "",
		"Directory for output and chain-log files (default: current directory)")

	return cmd
}

// runContext holds shared state for the run command execution.
type runContext struct {
	outputFormat string
	out          Output
}

// fail reports err in the active output format. JSON mode emits an error
// document and returns err wrapped in ErrJSONErrorOutput so the caller
// silences cobra without losing the exit code; text mode prints the
// actionable form and returns err unchanged.
func (rc *runContext) fail(err error) error {
	if rc.outputFormat == OutputJSON {
		_ = rc.out.JSON(runResponse{Success: false, Error: err.Error()})
		return reportedAsJSON(err)
	}
	rc.out.Error(err)
	return err
}

// runRun executes the run command.
func runRun(ctx context.Context, cmd *cobra.Command, w io.Writer, chainPath, inputPath string, opts runOptions) error {
	// Check context cancellation at entry
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Create signal handler for graceful shutdown on Ctrl+C
	sigHandler := signal.NewHandler(ctx)
	defer sigHandler.Stop()
	ctx = sigHandler.Context()

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()

	rc := &runContext{
		outputFormat: outputFormat,
		out:          NewOutput(w, outputFormat),
	}

	cfg, err := loadRunConfig(ctx, cmd, opts) //nolint:contextcheck // context is properly checked and used
	if err != nil {
		return rc.fail(err)
	}

	logger.Debug().
		Str("chain_file", chainPath).
		Str("input_file", inputPath).
		Str("provider", cfg.Generation.Provider).
		Str("mode", cfg.Run.Mode).
		Msg("run command starting")

	doc, input, err := loadChainAndInput(logger, rc, chainPath, inputPath)
	if err != nil {
		return err
	}

	if err := applyRedefinitionPolicy(logger, rc, doc, cfg.Run.Strict); err != nil {
		return err
	}

	g := chain.BuildGraph(doc)
	parallelMode := cfg.Run.Mode == config.ModeParallel

	// Resolve the plan up front so structural errors surface before any
	// provider call, and so the observer knows the step count.
	order, levels, err := resolvePlan(g, parallelMode)
	if err != nil {
		return rc.fail(err)
	}

	if opts.dryRun {
		return runDryRun(rc, doc, g, chainPath, cfg.Run.Mode, order, levels) //nolint:contextcheck // no blocking work in dry-run
	}

	generator, err := ai.NewGenerator(&cfg.Generation, logger)
	if err != nil {
		return rc.fail(err)
	}

	total := len(order)
	if parallelMode {
		total = len(g)
	}

	engine := chain.NewEngine(generator, logger,
		chain.WithWorkers(cfg.Run.MaxWorkers),
		chain.WithObserver(newProgressObserver(rc.out, total)))

	res, err := engine.Run(ctx, doc, g, input, chain.RunOptions{Parallel: parallelMode}) //nolint:contextcheck // signal handler context
	if err != nil {
		// Check if we were interrupted by Ctrl+C
		select {
		case <-sigHandler.Interrupted():
			logger.Warn().Msg("run interrupted, no artifacts written")
			rc.out.Warning("Interrupted. No output files were written.")
			return err
		default:
		}
		return rc.fail(err)
	}

	var artifacts *ArtifactPaths
	if cfg.Run.SaveArtifacts {
		artifacts, err = NewArtifactWriter(cfg.Run.ArtifactDir, clock.System{}).Write(inputPath, res)
		if err != nil {
			return rc.fail(err)
		}
		logger.Info().
			Str("output_path", artifacts.OutputPath).
			Str("log_path", artifacts.LogPath).
			Msg("artifacts written")
	}

	return displayRunResult(rc, cfg.Run.Mode, res, artifacts)
}

// loadRunConfig loads configuration with the run command's flag overrides.
func loadRunConfig(ctx context.Context, cmd *cobra.Command, opts runOptions) (*config.Config, error) {
	overrides := &config.Config{}
	overrides.Generation.Provider = opts.provider
	overrides.Generation.Model = opts.model
	overrides.Run.MaxWorkers = opts.workers
	overrides.Run.ArtifactDir = opts.artifactDir

	// The parallel flag maps to run.mode. Changed distinguishes an explicit
	// --parallel=false from the flag being absent.
	if cmd.Flags().Changed("parallel") {
		if opts.parallel {
			overrides.Run.Mode = config.ModeParallel
		} else {
			overrides.Run.Mode = config.ModeSequential
		}
	}

	cfg, err := config.LoadWithOverrides(ctx, overrides)
	if err != nil {
		return nil, err
	}

	// Bool overrides cannot go through LoadWithOverrides: false there is
	// indistinguishable from unset. Apply them only when the flag was passed.
	if cmd.Flags().Changed("strict") {
		cfg.Run.Strict = opts.strict
	}
	if cmd.Flags().Changed("no-save") {
		cfg.Run.SaveArtifacts = !opts.noSave
	}

	return cfg, nil
}

// loadChainAndInput reads and parses the chain file, then reads the input
// file. Files the loader rejects are usage errors and exit 2.
func loadChainAndInput(logger zerolog.Logger, rc *runContext, chainPath, inputPath string) (*chain.Document, string, error) {
	doc, err := chainfile.NewLoader("").Load(chainPath)
	if err != nil {
		return nil, "", rc.fail(prmptrerrors.NewExitCode2Error(err))
	}

	input, err := chainfile.ReadInput(inputPath)
	if err != nil {
		return nil, "", rc.fail(prmptrerrors.NewExitCode2Error(err))
	}

	logger.Debug().
		Int("definitions", doc.Len()).
		Int("input_len", len(input)).
		Msg("chain and input loaded")

	return doc, input, nil
}

// applyRedefinitionPolicy handles fragments defined more than once. Strict
// mode rejects the chain; otherwise the last definition already won during
// parsing and each name is reported as a warning.
func applyRedefinitionPolicy(logger zerolog.Logger, rc *runContext, doc *chain.Document, strict bool) error {
	redefined := doc.Redefined()
	if len(redefined) == 0 {
		return nil
	}

	if strict {
		return rc.fail(prmptrerrors.Wrapf(prmptrerrors.ErrDuplicateDefinition,
			"fragments %s", formatFragmentList(redefined)))
	}

	for _, name := range redefined {
		logger.Warn().Str("fragment", name).Msg("fragment redefined, last definition wins")
	}
	rc.out.Warning(fmt.Sprintf("Redefined fragments (last definition wins): %s",
		formatFragmentList(redefined)))
	return nil
}

// resolvePlan computes the execution order and, in parallel mode, the depth
// levels. The parallel path validates the whole graph first because every
// key executes, not only the output-rooted subgraph.
func resolvePlan(g chain.Graph, parallel bool) (order []string, levels [][]string, err error) {
	order, err = g.ExecutionOrder(constants.OutputName)
	if err != nil {
		return nil, nil, err
	}
	if parallel {
		if err = g.Validate(); err != nil {
			return nil, nil, err
		}
		levels = g.Levels()
	}
	return order, levels, nil
}

// progressObserver prints step progress through the Output. JSON mode
// suppresses these messages so stdout carries only the final document.
// Completion numbering counts finished steps, which in parallel mode is
// whatever order workers finish in.
type progressObserver struct {
	out   Output
	total int

	mu   sync.Mutex
	done int
}

func newProgressObserver(out Output, total int) *progressObserver {
	return &progressObserver{out: out, total: total}
}

// StepStarted announces a dynamic fragment before its generation call.
// Static fragments resolve instantly, so only their completion is shown.
func (p *progressObserver) StepStarted(name string, static bool) {
	if static {
		return
	}
	p.out.Info(fmt.Sprintf("Resolving [[%s]]...", name))
}

// StepCompleted reports a finished fragment with its position in the run.
func (p *progressObserver) StepCompleted(name string, static bool, duration time.Duration) {
	p.mu.Lock()
	p.done++
	done := p.done
	p.mu.Unlock()

	if static {
		p.out.Info(fmt.Sprintf("Step %d/%d: [[%s]] (static)", done, p.total, name))
		return
	}
	p.out.Success(fmt.Sprintf("Step %d/%d: [[%s]] resolved in %s",
		done, p.total, name, formatDuration(duration.Milliseconds())))
}

// runResponse represents the JSON output for run operations.
type runResponse struct {
	Success      bool           `json:"success"`
	RunID        string         `json:"run_id,omitempty"`
	Mode         string         `json:"mode,omitempty"`
	Steps        int            `json:"steps,omitempty"`
	StaticSteps  int            `json:"static_steps"`
	DynamicSteps int            `json:"dynamic_steps"`
	DurationMs   int64          `json:"duration_ms"`
	Output       string         `json:"output,omitempty"`
	Artifacts    *ArtifactPaths `json:"artifacts,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// displayRunResult outputs the run result in the appropriate format.
func displayRunResult(rc *runContext, mode string, res *chain.Result, artifacts *ArtifactPaths) error {
	static, dynamic := res.Log.Counts()

	if rc.outputFormat == OutputJSON {
		return rc.out.JSON(runResponse{
			Success:      true,
			RunID:        res.RunID,
			Mode:         mode,
			Steps:        res.Log.Len(),
			StaticSteps:  static,
			DynamicSteps: dynamic,
			DurationMs:   res.Duration.Milliseconds(),
			Output:       res.FinalValue,
			Artifacts:    artifacts,
		})
	}

	rc.out.Success(fmt.Sprintf("Chain resolved: %s", res.RunID))
	rc.out.Info(fmt.Sprintf("  Mode:     %s", formatMode(mode)))
	rc.out.Info(fmt.Sprintf("  Steps:    %d (%d static, %d generated)", res.Log.Len(), static, dynamic))
	rc.out.Info(fmt.Sprintf("  Duration: %s", formatDuration(res.Duration.Milliseconds())))

	if artifacts != nil {
		rc.out.Info(fmt.Sprintf("  Output:   %s", artifacts.OutputPath))
		rc.out.Info(fmt.Sprintf("  Log:      %s", artifacts.LogPath))
		return nil
	}

	// Nothing was saved, so the resolved value is only available here.
	rc.out.Info("")
	rc.out.Info(res.FinalValue)
	return nil
}

// dryRunResponse represents the JSON output for dry-run mode.
type dryRunResponse struct {
	DryRun    bool             `json:"dry_run"`
	ChainFile string           `json:"chain_file"`
	Mode      string           `json:"mode"`
	Steps     []dryRunStepInfo `json:"steps"`
	Levels    [][]string       `json:"levels,omitempty"`
	Summary   dryRunSummary    `json:"summary"`
}

// dryRunStepInfo describes what resolving one fragment would do.
type dryRunStepInfo struct {
	Index     int      `json:"index"`
	Name      string   `json:"name"`
	Static    bool     `json:"static"`
	DependsOn []string `json:"depends_on,omitempty"`
	WouldDo   string   `json:"would_do"`
}

// dryRunSummary contains summary information.
type dryRunSummary struct {
	TotalSteps               int `json:"total_steps"`
	StaticSteps              int `json:"static_steps"`
	DynamicSteps             int `json:"dynamic_steps"`
	GenerationCallsPrevented int `json:"generation_calls_prevented"`
}

// runDryRun shows the execution plan without calling the provider or
// writing any files.
func runDryRun(rc *runContext, doc *chain.Document, g chain.Graph, chainPath, mode string, order []string, levels [][]string) error {
	steps := make([]dryRunStepInfo, 0, len(order))
	var static, dynamic int

	for i, name := range order {
		deps := g[name]
		info := dryRunStepInfo{
			Index:     i,
			Name:      name,
			Static:    len(deps) == 0,
			DependsOn: deps,
		}
		if info.Static {
			static++
			info.WouldDo = "Use template text directly, no generation call"
		} else {
			dynamic++
			info.WouldDo = fmt.Sprintf("Substitute %s and send one generation request",
				formatFragmentList(deps))
		}
		steps = append(steps, info)
	}

	if rc.outputFormat == OutputJSON {
		return rc.out.JSON(dryRunResponse{
			DryRun:    true,
			ChainFile: chainPath,
			Mode:      mode,
			Steps:     steps,
			Levels:    levels,
			Summary: dryRunSummary{
				TotalSteps:               len(steps),
				StaticSteps:              static,
				DynamicSteps:             dynamic,
				GenerationCallsPrevented: dynamic,
			},
		})
	}

	return outputDryRunText(rc.out, doc, mode, steps, levels, static, dynamic)
}

// outputDryRunText outputs the dry-run plan for terminal display.
func outputDryRunText(out Output, doc *chain.Document, mode string, steps []dryRunStepInfo, levels [][]string, static, dynamic int) error {
	out.Info("=== DRY-RUN MODE ===")
	out.Info("Showing the execution plan without calling the provider.\n")

	out.Info(fmt.Sprintf("Definitions: %d fragments", doc.Len()))
	out.Info(fmt.Sprintf("Mode:        %s\n", formatMode(mode)))

	for _, step := range steps {
		kind := "generated"
		if step.Static {
			kind = "static"
		}
		out.Info(fmt.Sprintf("[%d/%d] [[%s]] (%s)", step.Index+1, len(steps), step.Name, kind))
		if len(step.DependsOn) > 0 {
			out.Info(fmt.Sprintf("      Depends on: %s", formatFragmentList(step.DependsOn)))
		}
		out.Info(fmt.Sprintf("      Would: %s\n", step.WouldDo))
	}

	if levels != nil {
		out.Info("Depth levels (fragments in one level resolve concurrently):")
		for depth, level := range levels {
			out.Info(fmt.Sprintf("  %d: %s", depth, formatFragmentList(level)))
		}
		out.Info("")
	}

	out.Info("=== Summary ===")
	out.Info(fmt.Sprintf("Steps: %d total (%d static, %d generated)", len(steps), static, dynamic))
	out.Info(fmt.Sprintf("Generation calls prevented: %d", dynamic))
	out.Info("")
	out.Success("Run without --dry-run to execute.")

	return nil
}
