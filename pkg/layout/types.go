package layout

import (
	"fmt"

	"github.com/matzehuels/stationmap/pkg/station"
)

// Default spacing in layout units.
const (
	DefaultLevelSpacing   = 180.0
	DefaultSiblingSpacing = 250.0
	DefaultNodeWidth      = 180.0
	DefaultNodeHeight     = 60.0
)

// Strategy selects how node depths are computed.
type Strategy string

const (
	// StrategyRecursive evaluates ComputeDepth per node.
	StrategyRecursive Strategy = "recursive"
	// StrategyKahn runs cycle breaking plus a topological longest-path pass.
	StrategyKahn Strategy = "kahn"
)

// DefaultStrategy is used when Options.Strategy is empty.
const DefaultStrategy = StrategyRecursive

// ParseStrategy validates a strategy name. The empty string selects
// DefaultStrategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return DefaultStrategy, nil
	case StrategyRecursive, StrategyKahn:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("invalid strategy: %q (must be one of: recursive, kahn)", s)
}

// Options configures spacing and depth computation. Zero or negative
// spacings fall back to the defaults.
type Options struct {
	LevelSpacing   float64  `json:"level_spacing,omitempty"`
	SiblingSpacing float64  `json:"sibling_spacing,omitempty"`
	NodeWidth      float64  `json:"node_width,omitempty"`
	NodeHeight     float64  `json:"node_height,omitempty"`
	Strategy       Strategy `json:"strategy,omitempty"`
}

// DefaultOptions returns the spacing used by the dashboard.
func DefaultOptions() Options {
	return Options{
		LevelSpacing:   DefaultLevelSpacing,
		SiblingSpacing: DefaultSiblingSpacing,
		NodeWidth:      DefaultNodeWidth,
		NodeHeight:     DefaultNodeHeight,
		Strategy:       DefaultStrategy,
	}
}

func (o Options) withDefaults() Options {
	if o.LevelSpacing <= 0 {
		o.LevelSpacing = DefaultLevelSpacing
	}
	if o.SiblingSpacing <= 0 {
		o.SiblingSpacing = DefaultSiblingSpacing
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	return o
}

// PositionedNode is a machine node with its derived category and placement.
type PositionedNode struct {
	ID            int              `json:"id"`
	MachineID     string           `json:"machineId,omitempty"`
	Name          string           `json:"name"`
	StationNumber string           `json:"stationNumber"`
	InputStations []int            `json:"inputStations"`
	Category      station.Category `json:"category"`
	Depth         int              `json:"depth"`
	Rank          int              `json:"rank"`
	X             float64          `json:"x"`
	Y             float64          `json:"y"`
}

// Label returns "<station number> - <name>", or whichever part is set.
func (n PositionedNode) Label() string {
	switch {
	case n.StationNumber == "":
		return n.Name
	case n.Name == "":
		return n.StationNumber
	}
	return n.StationNumber + " - " + n.Name
}

// Edge connects an input station (Source) to the station it feeds (Target).
type Edge struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Stats summarizes a layout.
type Stats struct {
	Nodes        int `json:"nodes"`
	Edges        int `json:"edges"`
	Disconnected int `json:"disconnected"`
	// MissingRefs counts input references to IDs absent from the node list.
	MissingRefs int `json:"missing_refs"`
	// CycleEdges counts edges that close a cycle.
	CycleEdges int `json:"cycle_edges"`
	// Crossings counts edge crossings between adjacent rows.
	Crossings int `json:"crossings"`
	MaxDepth  int `json:"max_depth"`
}

// Result is a complete layout. It is recomputed from scratch on every input
// change.
type Result struct {
	PositionedNodes   []PositionedNode `json:"positionedNodes"`
	Edges             []Edge           `json:"edges"`
	DisconnectedNodes []PositionedNode `json:"disconnectedNodes"`

	// Rows lists node IDs per depth in rank order.
	Rows   map[int][]int `json:"rows,omitempty"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Stats  Stats         `json:"stats"`
}

// Node returns the first positioned node with the given ID.
func (r Result) Node(id int) (PositionedNode, bool) {
	for _, n := range r.PositionedNodes {
		if n.ID == id {
			return n, true
		}
	}
	return PositionedNode{}, false
}

// IsEmpty reports whether the layout has no nodes.
func (r Result) IsEmpty() bool { return len(r.PositionedNodes) == 0 }
