// Package dag provides a directed graph with a row (layer) index, used as
// the working structure for layered machine-map layouts.
//
// # Overview
//
// A production line flows from raw-material stations to finished output.
// Drawn top to bottom, every station sits on a row one below its deepest
// input. This package holds the nodes, the directed edges between them and
// the row each node has been assigned to.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "1"})
//	g.AddNode(dag.Node{ID: "2"})
//	g.AddEdge(dag.Edge{From: "1", To: "2"})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.NodesInRow]
// and related methods.
//
// # Ordering
//
// All node listings follow insertion order. Layout ranks are derived from
// that order, so callers get the same layout for the same input every time.
//
// # Cycles
//
// Source data is hand-curated and occasionally contains loops. AddEdge does
// not reject them; [DAG.Validate] reports them and the [transform] subpackage
// can remove them.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph.
//
// [transform]: github.com/matzehuels/stationmap/pkg/dag/transform
package dag
