package transform

import "github.com/matzehuels/stationmap/pkg/dag"

// BreakCycles removes the back edges found by a depth-first search and
// returns how many edges were removed. The search starts from source nodes,
// then from any node still unvisited, both in insertion order, so the same
// graph always loses the same edges.
//
// After BreakCycles the graph is acyclic and [AssignLayers] produces a
// complete layering.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	removed := 0
	for _, e := range backEdges {
		before := g.EdgeCount()
		g.RemoveEdge(e[0], e[1])
		removed += before - g.EdgeCount()
	}
	return removed
}
