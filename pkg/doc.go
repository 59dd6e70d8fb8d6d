// Package pkg holds the libraries behind stationmap, which turns production
// machine maps into layered layouts and charts per-cycle tool measurements.
//
// # Overview
//
// A machine map is a list of stations, each naming the stations that feed
// it, plus two lists that mark stations as bypassed or not allowed. The pkg
// directory is organized by concern:
//
//  1. [station] - Machine nodes, datasets and station categories
//  2. [layout] - Depth assignment and positioning of the layered layout
//  3. [dag] - Directed graph with a row index; [dag/transform] breaks
//     cycles and assigns layers
//  4. [render/nodelink] - DOT, SVG and PNG output via Graphviz
//  5. [graph] - JSON and YAML encoding of datasets and layouts
//  6. [cycles] - Prediction and changelog documents, scatter charts and
//     per-cycle signal comparison
//  7. [source] - Loading documents from files and the dashboard data root
//  8. [pipeline] - Orchestration (load → layout → render) with caching
//
// Supporting packages: [cache] (none, file and redis backends), [config]
// (TOML settings), [observability] (pipeline, cache and fetch hooks),
// [errors] (coded errors and input validation), [httputil] (retries and
// status checks) and [buildinfo].
//
// # Architecture
//
//	dataset file / URL
//	        ↓
//	  [source] + [graph] (decode, normalize)
//	        ↓
//	  [layout] over [dag] (depths, ranks, positions)
//	        ↓
//	  [render/nodelink] (DOT → SVG/PNG) or layout JSON
//
// The CLI and the HTTP server both go through [pipeline], so a layout
// computed by one is a cache hit for the other.
//
// # Quick Start
//
//	ds, err := graph.ReadDatasetFile("plant.json")
//	if err != nil {
//	    return err
//	}
//	res := layout.FromDataset(ds, layout.DefaultOptions())
//	dot := nodelink.ToDOT(res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [station]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/station
// [layout]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/layout
// [dag]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/dag/transform
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/render/nodelink
// [graph]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/graph
// [cycles]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/cycles
// [source]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/source
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/httputil
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/stationmap/pkg/buildinfo
package pkg
