package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/stationmap/pkg/errors"
	"github.com/matzehuels/stationmap/pkg/layout"
)

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a layout to pretty-printed JSON bytes.
func MarshalLayout(res layout.Result) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a layout. Missing arrays
// decode as empty slices; edges must connect positioned nodes.
func UnmarshalLayout(data []byte) (layout.Result, error) {
	var res layout.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return layout.Result{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if res.PositionedNodes == nil {
		res.PositionedNodes = []layout.PositionedNode{}
	}
	if res.Edges == nil {
		res.Edges = []layout.Edge{}
	}
	if res.DisconnectedNodes == nil {
		res.DisconnectedNodes = []layout.PositionedNode{}
	}

	ids := make(map[int]bool, len(res.PositionedNodes))
	for _, n := range res.PositionedNodes {
		ids[n.ID] = true
	}
	for _, e := range res.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return layout.Result{}, errors.New(errors.ErrCodeInvalidFormat,
				"layout edge %d->%d references an unknown node", e.Source, e.Target)
		}
	}
	return res, nil
}

// WriteLayout writes a layout as JSON to w.
func WriteLayout(res layout.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteLayoutFile writes a layout to a JSON file.
func WriteLayoutFile(res layout.Result, path string) error {
	data, err := MarshalLayout(res)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a layout from a JSON file.
func ReadLayoutFile(path string) (layout.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return layout.Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
