package graph_test

import (
	"fmt"

	"github.com/matzehuels/stationmap/pkg/graph"
	"github.com/matzehuels/stationmap/pkg/layout"
)

func ExampleDecodeDataset() {
	doc := `
prod_machine_map:
  - {id: 1, machine_id: M-1, name: Cutter, station_number: S1}
  - {id: 2, machine_id: M-2, name: Press, station_number: S2, input_stations: [1]}
bypass_list: [M-2]
`
	ds, err := graph.DecodeDataset([]byte(doc), "")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, n := range ds.Nodes {
		fmt.Println(n.ID, n.Name, ds.Category(n))
	}
	// Output:
	// 1 Cutter normal
	// 2 Press bypass
}

func ExampleMarshalLayout() {
	ds, _ := graph.DecodeDataset([]byte(`{"prod_machine_map":[{"id":1,"name":"Cutter"}]}`), "")
	res := layout.FromDataset(ds, layout.DefaultOptions())

	data, _ := graph.MarshalLayout(res)
	fmt.Println(string(data))
	// Output:
	// {
	//   "positionedNodes": [
	//     {
	//       "id": 1,
	//       "name": "Cutter",
	//       "stationNumber": "",
	//       "inputStations": [],
	//       "category": "normal",
	//       "depth": 0,
	//       "rank": 0,
	//       "x": 0,
	//       "y": 0
	//     }
	//   ],
	//   "edges": [],
	//   "disconnectedNodes": [
	//     {
	//       "id": 1,
	//       "name": "Cutter",
	//       "stationNumber": "",
	//       "inputStations": [],
	//       "category": "normal",
	//       "depth": 0,
	//       "rank": 0,
	//       "x": 0,
	//       "y": 0
	//     }
	//   ],
	//   "rows": {
	//     "0": [
	//       1
	//     ]
	//   },
	//   "width": 180,
	//   "height": 60,
	//   "stats": {
	//     "nodes": 1,
	//     "edges": 0,
	//     "disconnected": 1,
	//     "missing_refs": 0,
	//     "cycle_edges": 0,
	//     "crossings": 0,
	//     "max_depth": 0
	//   }
	// }
}
