// Package transform provides graph transformations that prepare a machine
// map for layered drawing.
//
// # Cycle Breaking
//
// [BreakCycles] detects and removes edges that create cycles. Machine maps
// should be acyclic, but hand-edited data sometimes routes a station back
// into one of its own upstream inputs. The function removes the back edges
// found by a depth-first search.
//
// # Layer Assignment
//
// [AssignLayers] computes the row of each node as its longest distance from
// a source node, using a topological traversal so that every input station
// sits above the stations it feeds.
//
// # Usage
//
//	removed := transform.BreakCycles(g)
//	transform.AssignLayers(g)
package transform
