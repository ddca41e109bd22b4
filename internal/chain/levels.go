package chain

// Levels groups every graph key by dependency depth and returns the groups
// in ascending depth order. A fragment's depth is 0 when none of its
// references are graph keys; otherwise it is one greater than the deepest
// of its in-graph dependencies. External leaves contribute nothing, so a
// fragment that references only the input sits at depth 0 alongside
// static fragments.
//
// Fragments within one level never depend on each other, directly or
// transitively: any such edge would push one endpoint to a greater depth.
// That makes a level the unit of parallel dispatch, provided every prior
// level has completed.
//
// Levels must only be called on a graph that Validate (or ExecutionOrder
// over every key) has already accepted. The depth recursion is memoized
// but has no cycle guard of its own; a cyclic graph is a precondition
// violation here.
func (g Graph) Levels() [][]string {
	if len(g) == 0 {
		return nil
	}

	depths := make(map[string]int, len(g))
	var depthOf func(name string) int
	depthOf = func(name string) int {
		if d, ok := depths[name]; ok {
			return d
		}
		deepest := -1
		for _, dep := range g[name] {
			if _, isKey := g[dep]; !isKey {
				continue
			}
			if d := depthOf(dep); d > deepest {
				deepest = d
			}
		}
		d := deepest + 1
		depths[name] = d
		return d
	}

	maxDepth := 0
	keys := g.Keys()
	for _, name := range keys {
		if d := depthOf(name); d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]string, maxDepth+1)
	for _, name := range keys {
		d := depths[name]
		levels[d] = append(levels[d], name)
	}
	return levels
}
