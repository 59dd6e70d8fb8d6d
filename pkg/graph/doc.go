// Package graph provides the wire formats for machine-map datasets and
// their layouts.
//
// # Datasets
//
// A dataset is read from JSON or YAML:
//
//	{
//	  "prod_machine_map": [
//	    {"id": 1, "machine_id": "M-1", "name": "Cutter", "station_number": "S1", "input_stations": []},
//	    {"id": 2, "machine_id": "M-2", "name": "Press", "station_number": "S2", "input_stations": [1]}
//	  ],
//	  "bypass_list": ["M-2"],
//	  "not_allowed_list": []
//	}
//
// The format is taken from the file extension when there is one and
// otherwise sniffed from the content:
//
//	ds, err := graph.ReadDatasetFile("plant.yaml")
//	ds, err := graph.DecodeDataset(body, "")
//	err = graph.WriteDatasetFile(ds, "plant.json")
//
// # Layouts
//
// A [layout.Result] is serialized as pretty-printed JSON with the keys
// positionedNodes, edges and disconnectedNodes, followed by the rows,
// bounding box and stats:
//
//	data, _ := graph.MarshalLayout(res)
//	res, err := graph.UnmarshalLayout(data)
//
// [UnmarshalLayout] rejects documents whose edges reference nodes that are
// not positioned, so cached or hand-edited layouts are checked before they
// reach a renderer.
//
// # Concurrency
//
// All functions are stateless and safe for concurrent use.
//
// [layout.Result]: github.com/matzehuels/stationmap/pkg/layout.Result
package graph
