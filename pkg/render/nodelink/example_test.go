package nodelink_test

import (
	"fmt"

	"github.com/matzehuels/stationmap/pkg/layout"
	"github.com/matzehuels/stationmap/pkg/render/nodelink"
	"github.com/matzehuels/stationmap/pkg/station"
)

func ExampleToDOT() {
	nodes := []station.MachineNode{
		{ID: 1, Name: "Cutter", StationNumber: "S1"},
		{ID: 2, Name: "Press", StationNumber: "S2", InputStations: []int{1}},
	}
	res := layout.Compute(nodes, nil, []string{"2"}, layout.DefaultOptions())
	fmt.Print(nodelink.ToDOT(res, nodelink.Options{}))
	// Output:
	// digraph G {
	//   bgcolor="transparent";
	//   inputscale=72;
	//   splines=true;
	//   overlap=true;
	//   node [shape=box, style="rounded,filled", fixedsize=true, width=2.5, height=0.83, fontsize=14];
	//   edge [arrowsize=0.7, color="#555555"];
	//
	//   "n1" [label="S1 - Cutter", pos="0,0!", fillcolor="#FFFFFF"];
	//   "n2" [label="S2 - Press", pos="0,-180!", fillcolor="#f44336", fontcolor=white];
	//
	//   "n1" -> "n2";
	// }
}
