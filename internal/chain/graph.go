package chain

import (
	"regexp"
	"sort"

	prmptrerrors "github.com/greg-randall/prmptr/internal/errors"
)

// referenceRe matches a [[name]] dependency reference inside template text.
// Unlike definition names, reference names are not trimmed: substitution
// replaces the reference byte for byte, so the spelling must match.
var referenceRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// ExtractRefs returns every [[name]] reference found in template text,
// scanning left to right, duplicates and self-references included.
func ExtractRefs(text string) []string {
	matches := referenceRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, m[1])
	}
	return refs
}

// Graph maps each fragment name to the ordered list of names its template
// references. A referenced name that is not itself a key is an external
// leaf whose value must be supplied before execution (the reserved input).
type Graph map[string][]string

// BuildGraph applies ExtractRefs to every definition in the document.
// Every key of the returned graph is a definition key of doc.
func BuildGraph(doc *Document) Graph {
	g := make(Graph, doc.Len())
	for _, name := range doc.Names() {
		template, _ := doc.Template(name)
		g[name] = ExtractRefs(template)
	}
	return g
}

// Keys returns the graph's fragment names in sorted order.
func (g Graph) Keys() []string {
	keys := make([]string, 0, len(g))
	for name := range g {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

// walker performs the depth-first traversal shared by ExecutionOrder and
// Validate. The visiting set tracks the active recursion path for cycle
// detection; the visited set memoizes finished nodes across roots.
type walker struct {
	graph    Graph
	visiting map[string]bool
	visited  map[string]bool
	order    []string
}

func newWalker(g Graph) *walker {
	return &walker{
		graph:    g,
		visiting: make(map[string]bool, len(g)),
		visited:  make(map[string]bool, len(g)),
		order:    make([]string, 0, len(g)),
	}
}

func (w *walker) visit(node string) error {
	if w.visited[node] {
		return nil
	}
	if w.visiting[node] {
		return prmptrerrors.Wrapf(prmptrerrors.ErrCyclicDependency, "fragment %q", node)
	}

	deps, isKey := w.graph[node]
	if isKey {
		w.visiting[node] = true
		for _, dep := range deps {
			if err := w.visit(dep); err != nil {
				return err
			}
		}
		delete(w.visiting, node)
	}

	// External leaves are memoized but never appended: their values are
	// supplied from outside the graph, not produced by it.
	w.visited[node] = true
	if isKey {
		w.order = append(w.order, node)
	}
	return nil
}

// ExecutionOrder computes the sequential execution order rooted at root,
// typically the output fragment. The returned order lists every fragment
// reachable from root after all of its in-graph dependencies, and never
// contains external leaves such as the reserved input name.
//
// Returns ErrMissingOutputNode when root is not defined and
// ErrCyclicDependency, naming the first offending fragment, when the
// reachable subgraph contains a cycle.
func (g Graph) ExecutionOrder(root string) ([]string, error) {
	if _, ok := g[root]; !ok {
		return nil, prmptrerrors.Wrapf(prmptrerrors.ErrMissingOutputNode, "fragment %q", root)
	}
	w := newWalker(g)
	if err := w.visit(root); err != nil {
		return nil, err
	}
	return w.order, nil
}

// Validate proves the whole graph is acyclic by running the traversal from
// every key, not only the output-rooted subgraph. The parallel path
// executes every key, so it must call Validate before Levels: Levels does
// no cycle checking of its own.
func (g Graph) Validate() error {
	w := newWalker(g)
	for _, name := range g.Keys() {
		if err := w.visit(name); err != nil {
			return err
		}
	}
	return nil
}
