package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/stationmap/pkg/layout"
	"github.com/matzehuels/stationmap/pkg/station"
)

// Fill colours per category.
const (
	ColorNotAllowed = "#f44336"
	ColorBypass     = "#2196f3"
	ColorNormal     = "#FFFFFF"
)

// pointsPerInch converts layout units, which are treated as points, to the
// inches Graphviz expects for node sizes.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Detailed adds depth and rank to node labels.
	Detailed bool
	// NodeWidth and NodeHeight size the node boxes; zero uses the layout
	// defaults.
	NodeWidth  float64
	NodeHeight float64
}

func (o Options) withDefaults() Options {
	if o.NodeWidth <= 0 {
		o.NodeWidth = layout.DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = layout.DefaultNodeHeight
	}
	return o
}

// FillColor returns the node fill for a category.
func FillColor(c station.Category) string {
	switch c {
	case station.CategoryNotAllowed:
		return ColorNotAllowed
	case station.CategoryBypass:
		return ColorBypass
	}
	return ColorNormal
}

// ToDOT converts a layout to Graphviz DOT. Node positions are pinned, with
// the layout's y axis flipped so depth 0 is drawn at the top. The output is
// deterministic for a given Result.
func ToDOT(res layout.Result, opts Options) string {
	opts = opts.withDefaults()

	disconnected := make(map[int]bool, len(res.DisconnectedNodes))
	for _, n := range res.DisconnectedNodes {
		disconnected[n.ID] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fixedsize=true, width=%s, height=%s, fontsize=14];\n",
		ftoa(opts.NodeWidth/pointsPerInch), ftoa(opts.NodeHeight/pointsPerInch))
	buf.WriteString("  edge [arrowsize=0.7, color=\"#555555\"];\n")
	buf.WriteString("\n")

	// Duplicate IDs share a Graphviz node; the first record is drawn.
	seen := make(map[int]bool, len(res.PositionedNodes))
	for _, n := range res.PositionedNodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(n.ID), strings.Join(attrs(n, opts, disconnected[n.ID]), ", "))
	}

	if len(res.Edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range res.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(e.Source), nodeID(e.Target))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func attrs(n layout.PositionedNode, opts Options, disconnected bool) []string {
	fill := FillColor(n.Category)
	out := []string{
		fmt.Sprintf("label=%q", label(n, opts.Detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", ftoa(n.X), ftoa(-n.Y)),
		fmt.Sprintf("fillcolor=%q", fill),
	}
	if fill != ColorNormal {
		out = append(out, "fontcolor=white")
	}
	if disconnected {
		out = append(out, "style=\"rounded,filled,dashed\"")
	}
	return out
}

func label(n layout.PositionedNode, detailed bool) string {
	l := n.Label()
	if l == "" {
		l = nodeID(n.ID)
	}
	if !detailed {
		return l
	}
	return fmt.Sprintf("%s\ndepth %d, rank %d", l, n.Depth, n.Rank)
}

func nodeID(id int) string { return fmt.Sprintf("n%d", id) }

// ftoa formats without trailing zeros, which keeps the DOT output stable.
func ftoa(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
