package dag_test

import (
	"fmt"

	"github.com/matzehuels/stationmap/pkg/dag"
)

func ExampleDAG_basic() {
	// A short line: cutting → welding → painting
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "cutting", Row: 0})
	_ = g.AddNode(dag.Node{ID: "welding", Row: 1})
	_ = g.AddNode(dag.Node{ID: "painting", Row: 2})
	_ = g.AddEdge(dag.Edge{From: "cutting", To: "welding"})
	_ = g.AddEdge(dag.Edge{From: "welding", To: "painting"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Rows:", g.RowCount())
	// Output:
	// Nodes: 3
	// Edges: 2
	// Rows: 3
}

func ExampleDAG_traversal() {
	// Assembly takes input from two upstream stations
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "frame"})
	_ = g.AddNode(dag.Node{ID: "motor"})
	_ = g.AddNode(dag.Node{ID: "assembly", Row: 1})
	_ = g.AddEdge(dag.Edge{From: "frame", To: "assembly"})
	_ = g.AddEdge(dag.Edge{From: "motor", To: "assembly"})

	fmt.Println("Parents of assembly:", g.Parents("assembly"))
	fmt.Println("Children of frame:", g.Children("frame"))
	fmt.Println("In-degree of assembly:", g.InDegree("assembly"))
	// Output:
	// Parents of assembly: [frame motor]
	// Children of frame: [assembly]
	// In-degree of assembly: 2
}

func ExampleDAG_Isolated() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "press"})
	_ = g.AddNode(dag.Node{ID: "lathe"})
	_ = g.AddNode(dag.Node{ID: "spare"})
	_ = g.AddEdge(dag.Edge{From: "press", To: "lathe"})

	fmt.Println(dag.NodeIDs(g.Isolated()))
	// Output:
	// [spare]
}
