package pipeline

import (
	"github.com/matzehuels/stationmap/pkg/cache"
	"github.com/matzehuels/stationmap/pkg/graph"
	"github.com/matzehuels/stationmap/pkg/layout"
	"github.com/matzehuels/stationmap/pkg/station"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout computes the layout of ds. It is pure; caching happens in
// [Runner.Layout].
func GenerateLayout(ds station.Dataset, opts Options) layout.Result {
	opts.SetLayoutDefaults()
	return layout.FromDataset(ds, opts.LayoutOptions())
}

// DatasetHash returns the content hash of ds's canonical JSON encoding.
// Datasets that differ only in file format or whitespace hash alike.
func DatasetHash(ds station.Dataset) (string, error) {
	data, err := graph.MarshalDataset(ds, graph.FormatJSON)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// LayoutHash returns the content hash of a layout's JSON encoding.
func LayoutHash(res layout.Result) (string, error) {
	data, err := graph.MarshalLayout(res)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
