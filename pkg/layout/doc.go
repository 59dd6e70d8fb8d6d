// Package layout positions a machine map as a layered, top-to-bottom tree.
//
// # Overview
//
// [Compute] takes the flat node list of a [station.Dataset] and returns a
// [Result]: every node with a depth, a rank and x/y coordinates, the directed
// edges between them and the nodes that take part in no edge at all.
//
//	res := layout.Compute(ds.Nodes, ds.BypassList, ds.NotAllowedList, layout.DefaultOptions())
//	for _, n := range res.PositionedNodes {
//	    fmt.Println(n.ID, n.Depth, n.Rank, n.X, n.Y)
//	}
//
// # Depth
//
// A node's depth is its distance from the furthest upstream station that has
// no inputs, so material flows downward from row 0. [ComputeDepth] defines
// it recursively: nodes without (resolvable) inputs are at depth 0, others at
// one more than their deepest input.
//
// Input references to IDs that are not in the node list are ignored. A
// reference back to a node already on the current recursion path (a cycle)
// contributes depth 0 instead of recursing forever. Because the visited set
// is scoped to the recursion path, a station reachable over two routes of
// different length always gets the longer one.
//
// # Strategies
//
// [StrategyRecursive] evaluates [ComputeDepth] for every node, reusing the
// results of subtrees that touched no cycle. [StrategyKahn] builds a
// [dag.DAG], removes back edges and runs a topological longest-path pass.
// Both produce the same depths on acyclic input. A duplicated ID takes its
// depth from its first record under either strategy; the inputs of later
// records still produce edges.
//
// # Ranks and coordinates
//
// Nodes are placed in input order. The rank of a node is the number of
// nodes already placed at its depth; x grows by [Options.SiblingSpacing] per
// rank and y by [Options.LevelSpacing] per depth. Reordering the input
// reorders siblings, so callers that need stable drawings must keep their
// node order stable.
//
// # Concurrency
//
// Compute is a pure function of its arguments. It never mutates its inputs
// and can run concurrently on independent or shared read-only data.
//
// [dag.DAG]: github.com/matzehuels/stationmap/pkg/dag.DAG
package layout
