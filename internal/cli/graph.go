// Package cli provides the command-line interface for prmptr.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/greg-randall/prmptr/internal/chain"
	"github.com/greg-randall/prmptr/internal/chainfile"
	"github.com/greg-randall/prmptr/internal/constants"
	prmptrerrors "github.com/greg-randall/prmptr/internal/errors"
)

// AddGraphCommand adds the graph command to the root command.
func AddGraphCommand(root *cobra.Command) {
	root.AddCommand(newGraphCmd())
}

// newGraphCmd creates the graph command.
func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <chain-file>",
		Short: "Inspect a chain's dependencies without running it",
		Long: `Graph parses the chain file and prints every fragment with its
references, the sequential execution order rooted at the output
fragment, and the depth levels used by parallel mode.

No provider is called and no files are written, so graph is the place
to debug a chain that fails with a cycle or a missing definition.

Examples:
  prmptr graph chain.txt
  prmptr graph chain.yaml --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runGraph(cmd.Context(), cmd, cmd.OutOrStdout(), args[0])
			// If JSON error was already output, silence cobra's error printing
			// but still return error for non-zero exit code
			if stderrors.Is(err, prmptrerrors.ErrJSONErrorOutput) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	return cmd
}

// graphResponse represents the JSON output for graph operations.
type graphResponse struct {
	Success   bool                `json:"success"`
	ChainFile string              `json:"chain_file"`
	Fragments []graphFragmentInfo `json:"fragments"`
	Order     []string            `json:"order,omitempty"`
	Levels    [][]string          `json:"levels,omitempty"`
	Redefined []string            `json:"redefined,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// graphFragmentInfo describes one fragment and its references.
type graphFragmentInfo struct {
	Name      string   `json:"name"`
	Static    bool     `json:"static"`
	DependsOn []string `json:"depends_on,omitempty"`
}

// runGraph executes the graph command.
func runGraph(ctx context.Context, cmd *cobra.Command, w io.Writer, chainPath string) error {
	// Check context cancellation at entry
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()
	out := NewOutput(w, outputFormat)

	doc, err := chainfile.NewLoader("").Load(chainPath)
	if err != nil {
		// A chain file the loader rejects is a usage error and exits 2.
		err = prmptrerrors.NewExitCode2Error(err)
		if outputFormat == OutputJSON {
			_ = out.JSON(graphResponse{Success: false, ChainFile: chainPath, Error: err.Error()})
			return reportedAsJSON(err)
		}
		out.Error(err)
		return err
	}

	g := chain.BuildGraph(doc)
	resp := graphResponse{
		Success:   true,
		ChainFile: chainPath,
		Fragments: collectFragmentInfo(g),
		Redefined: doc.Redefined(),
	}

	// Structural problems are findings here, not failures: the fragment
	// table is still shown so the user can see what to fix.
	structErr := resolveGraphStructure(g, &resp)
	if structErr != nil {
		resp.Success = false
		resp.Error = structErr.Error()
	}

	logger.Debug().
		Str("chain_file", chainPath).
		Int("fragments", len(resp.Fragments)).
		Bool("valid", resp.Success).
		Msg("graph inspected")

	if outputFormat == OutputJSON {
		if err := out.JSON(resp); err != nil {
			return err
		}
		if structErr != nil {
			return reportedAsJSON(structErr)
		}
		return nil
	}

	displayGraphText(out, resp)
	if structErr != nil {
		out.Error(structErr)
		return structErr
	}
	return nil
}

// collectFragmentInfo builds the fragment table in sorted name order.
func collectFragmentInfo(g chain.Graph) []graphFragmentInfo {
	fragments := make([]graphFragmentInfo, 0, len(g))
	for _, name := range g.Keys() {
		deps := g[name]
		fragments = append(fragments, graphFragmentInfo{
			Name:      name,
			Static:    len(deps) == 0,
			DependsOn: deps,
		})
	}
	return fragments
}

// resolveGraphStructure fills in the order and levels, returning the first
// structural error found. An order can exist while the levels do not: a
// cycle outside the output-rooted subgraph fails only whole-graph
// validation.
func resolveGraphStructure(g chain.Graph, resp *graphResponse) error {
	order, err := g.ExecutionOrder(constants.OutputName)
	if err != nil {
		return err
	}
	resp.Order = order

	if err := g.Validate(); err != nil {
		return err
	}
	resp.Levels = g.Levels()
	return nil
}

// displayGraphText outputs the graph details for terminal display.
func displayGraphText(out Output, resp graphResponse) {
	out.Info(fmt.Sprintf("Fragments (%d):", len(resp.Fragments)))
	for _, frag := range resp.Fragments {
		if frag.Static {
			out.Info(fmt.Sprintf("  [[%s]] (static)", frag.Name))
			continue
		}
		out.Info(fmt.Sprintf("  [[%s]] depends on: %s", frag.Name, formatFragmentList(frag.DependsOn)))
	}

	if len(resp.Redefined) > 0 {
		out.Info("")
		out.Warning(fmt.Sprintf("Redefined fragments (last definition wins): %s",
			formatFragmentList(resp.Redefined)))
	}

	if resp.Order != nil {
		out.Info("")
		out.Info("Execution order:")
		for i, name := range resp.Order {
			out.Info(fmt.Sprintf("  %d. [[%s]]", i+1, name))
		}
	}

	if resp.Levels != nil {
		out.Info("")
		out.Info("Depth levels (fragments in one level resolve concurrently):")
		for depth, level := range resp.Levels {
			out.Info(fmt.Sprintf("  %d: %s", depth, formatFragmentList(level)))
		}
	}

	if resp.Success {
		out.Info("")
		out.Success("Chain is valid.")
	}
}
