package layout

import (
	"strconv"

	"github.com/matzehuels/stationmap/pkg/dag"
	"github.com/matzehuels/stationmap/pkg/dag/transform"
	"github.com/matzehuels/stationmap/pkg/station"
)

// ComputeDepth returns the depth of the node with the given ID.
//
// The depth is 0 when the node is not in nodes, has no input stations, or
// none of its input stations are in nodes. Otherwise it is one more than the
// largest depth among its resolvable inputs. A node met again while its own
// depth is still being computed contributes 0, which bounds the recursion on
// cyclic data.
func ComputeDepth(nodeID int, nodes []station.MachineNode) int {
	d := newDepther(nodes, station.NewIndex(nodes))
	return d.depth(nodeID)
}

// depther evaluates depths over one node list. Results of subtrees that never
// hit a node on the current path do not depend on the path and are memoized.
type depther struct {
	nodes  []station.MachineNode
	idx    station.Index
	memo   map[int]int
	onPath map[int]bool
}

func newDepther(nodes []station.MachineNode, idx station.Index) *depther {
	return &depther{
		nodes:  nodes,
		idx:    idx,
		memo:   make(map[int]int, len(nodes)),
		onPath: make(map[int]bool),
	}
}

func (d *depther) depth(id int) int {
	v, _ := d.visit(id)
	return v
}

// visit returns the depth of id and whether the computation stayed clear of
// the current path.
func (d *depther) visit(id int) (int, bool) {
	if v, ok := d.memo[id]; ok {
		return v, true
	}
	if d.onPath[id] {
		return 0, false
	}
	n, ok := d.idx.Lookup(d.nodes, id)
	if !ok || n.IsSource() {
		return 0, true
	}

	d.onPath[id] = true
	defer delete(d.onPath, id)

	best, resolved, clean := 0, false, true
	for _, in := range n.InputStations {
		if !d.idx.Has(in) {
			continue
		}
		v, c := d.visit(in)
		clean = clean && c
		if !resolved || v > best {
			best, resolved = v, true
		}
	}

	depth := 0
	if resolved {
		depth = best + 1
	}
	if clean {
		d.memo[id] = depth
	}
	return depth, clean
}

// recursiveDepths computes the depth of every distinct ID in nodes.
func recursiveDepths(nodes []station.MachineNode, idx station.Index) map[int]int {
	d := newDepther(nodes, idx)
	depths := make(map[int]int, len(idx))
	for _, n := range nodes {
		if _, done := depths[n.ID]; !done {
			depths[n.ID] = d.depth(n.ID)
		}
	}
	return depths
}

// kahnDepths computes depths on g after removing its back edges. g is
// modified.
func kahnDepths(g *dag.DAG) map[int]int {
	transform.BreakCycles(g)
	transform.AssignLayers(g)

	depths := make(map[int]int, g.NodeCount())
	for _, n := range g.Nodes() {
		id, err := strconv.Atoi(n.ID)
		if err != nil {
			continue
		}
		depths[id] = n.Row
	}
	return depths
}
