// Package station defines the production-machine data model.
//
// A [Dataset] is the document a dashboard loads at startup: a flat list of
// [MachineNode] records, each naming the stations it takes input from, plus
// two lists of machine IDs that classify nodes as bypassed or not allowed.
//
// # Categories
//
// A node's [Category] is never stored on the node. It is derived from the
// dataset's bypass and not-allowed lists by [Classify]. When a machine ID
// appears in both lists the not-allowed classification wins.
//
// # Editing
//
// [EditNode] replaces the display fields of one node and moves it between
// category lists. It returns new collections and never mutates its inputs, so
// a layout can be recomputed from the result deterministically.
package station
