package layout

import (
	"strconv"

	"github.com/matzehuels/stationmap/pkg/dag"
	"github.com/matzehuels/stationmap/pkg/dag/transform"
	"github.com/matzehuels/stationmap/pkg/station"
)

// Compute lays out nodes and classifies them against the bypass and
// not-allowed lists.
//
// Missing input references are dropped, cycles are tolerated and an empty
// node list yields an empty Result; Compute never fails. Calling it twice
// with the same arguments (including node order) yields equal results.
func Compute(nodes []station.MachineNode, bypass, notAllowed []string, opts Options) Result {
	opts = opts.withDefaults()

	res := Result{
		PositionedNodes:   []PositionedNode{},
		Edges:             []Edge{},
		DisconnectedNodes: []PositionedNode{},
	}
	if len(nodes) == 0 {
		return res
	}

	idx := station.NewIndex(nodes)
	g, missing := buildGraph(nodes, idx, false)
	res.Edges = edgesOf(g)
	res.Stats.MissingRefs = missing

	var depths map[int]int
	if opts.Strategy == StrategyKahn {
		// Depth follows the first record of a duplicated ID, as in ComputeDepth.
		first, _ := buildGraph(nodes, idx, true)
		depths = kahnDepths(first)
	} else {
		depths = recursiveDepths(nodes, idx)
	}
	res.Stats.CycleEdges = countCycleEdges(g)

	bypassSet := station.NewIDSet(bypass)
	notAllowedSet := station.NewIDSet(notAllowed)

	connected := make(map[int]bool, len(nodes))
	for _, e := range res.Edges {
		connected[e.Source] = true
		connected[e.Target] = true
	}

	levelCount := make(map[int]int)
	res.Rows = make(map[int][]int)
	res.PositionedNodes = make([]PositionedNode, 0, len(nodes))
	for _, n := range nodes {
		depth := depths[n.ID]
		rank := levelCount[depth]
		levelCount[depth]++

		pn := PositionedNode{
			ID:            n.ID,
			MachineID:     n.MachineID,
			Name:          n.Name,
			StationNumber: n.StationNumber,
			InputStations: append([]int{}, n.InputStations...),
			Category:      station.Classify(n, bypassSet, notAllowedSet),
			Depth:         depth,
			Rank:          rank,
			X:             float64(rank) * opts.SiblingSpacing,
			Y:             float64(depth) * opts.LevelSpacing,
		}
		res.PositionedNodes = append(res.PositionedNodes, pn)
		res.Rows[depth] = append(res.Rows[depth], n.ID)

		if !connected[n.ID] {
			res.DisconnectedNodes = append(res.DisconnectedNodes, pn)
		}

		res.Width = max(res.Width, pn.X+opts.NodeWidth)
		res.Height = max(res.Height, pn.Y+opts.NodeHeight)
		res.Stats.MaxDepth = max(res.Stats.MaxDepth, depth)
	}

	res.Stats.Nodes = len(res.PositionedNodes)
	res.Stats.Edges = len(res.Edges)
	res.Stats.Disconnected = len(res.DisconnectedNodes)
	res.Stats.Crossings = dag.CountCrossings(g, rowKeys(res.Rows))
	return res
}

// rowKeys converts Rows to graph keys, keeping the first occurrence of a
// duplicated ID.
func rowKeys(rows map[int][]int) map[int][]string {
	orders := make(map[int][]string, len(rows))
	seen := make(map[int]bool)
	for depth, ids := range rows {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			orders[depth] = append(orders[depth], key(id))
		}
	}
	return orders
}

// FromDataset is Compute over a dataset's nodes and lists.
func FromDataset(ds station.Dataset, opts Options) Result {
	return Compute(ds.Nodes, ds.BypassList, ds.NotAllowedList, opts)
}

// buildGraph returns a graph holding one node per distinct ID and one edge
// per resolvable input reference, in node then input order, along with the
// number of unresolvable references. Every record contributes edges, so a
// duplicated ID contributes the inputs of each of its records, unless
// firstOnly is set.
func buildGraph(nodes []station.MachineNode, idx station.Index, firstOnly bool) (*dag.DAG, int) {
	g := dag.New(nil)
	for _, n := range nodes {
		// Duplicate IDs are already resolved by idx; first record wins.
		_ = g.AddNode(dag.Node{ID: key(n.ID), Meta: dag.Metadata{"name": n.Name}})
	}

	missing := 0
	for i, n := range nodes {
		if firstOnly && idx[n.ID] != i {
			continue
		}
		for _, in := range n.InputStations {
			if !idx.Has(in) {
				missing++
				continue
			}
			_ = g.AddEdge(dag.Edge{From: key(in), To: key(n.ID)})
		}
	}
	return g, missing
}

func edgesOf(g *dag.DAG) []Edge {
	edges := make([]Edge, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		from, _ := strconv.Atoi(e.From)
		to, _ := strconv.Atoi(e.To)
		edges = append(edges, Edge{Source: from, Target: to})
	}
	return edges
}

// countCycleEdges reports how many edges close a cycle. g is modified.
func countCycleEdges(g *dag.DAG) int {
	if g.Validate() == nil {
		return 0
	}
	return transform.BreakCycles(g)
}

func key(id int) string { return strconv.Itoa(id) }
