// Package nodelink renders station layouts as node-link diagrams.
//
// # Overview
//
// [ToDOT] turns a [layout.Result] into Graphviz DOT source. Every node is
// pinned to the coordinates the layout engine assigned, so Graphviz only
// routes the edges; it never re-ranks the graph. Nodes are filled by
// category: red for not-allowed stations, blue for bypassed stations and
// white otherwise. Stations with no edges are drawn dashed.
//
// # Usage
//
//	res := layout.FromDataset(ds, layout.DefaultOptions())
//	dot := nodelink.ToDOT(res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz] in-process with the neato
// engine, which honours pinned positions.
//
// [layout.Result]: github.com/matzehuels/stationmap/pkg/layout.Result
package nodelink
