package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stationmap/pkg/errors"
	"github.com/matzehuels/stationmap/pkg/station"
)

// =============================================================================
// Formats
// =============================================================================

// Format is a dataset encoding.
type Format string

// Supported dataset encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat picks the encoding for a dataset named name with the given
// content. A .json, .yaml or .yml extension decides; otherwise content
// starting with '{' or '[' is JSON and anything else YAML.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// =============================================================================
// Dataset Serialization API
// =============================================================================

// DecodeDataset decodes a dataset. name is only used to detect the format
// and may be empty.
func DecodeDataset(data []byte, name string) (station.Dataset, error) {
	var ds station.Dataset
	format := DetectFormat(name, data)

	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &ds)
	default:
		err = yaml.Unmarshal(data, &ds)
	}
	if err != nil {
		return station.Dataset{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s dataset", format)
	}
	if err := validateDataset(ds); err != nil {
		return station.Dataset{}, err
	}
	return ds, nil
}

// ReadDataset decodes a dataset from r.
func ReadDataset(r io.Reader, name string) (station.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return station.Dataset{}, fmt.Errorf("read dataset: %w", err)
	}
	return DecodeDataset(data, name)
}

// ReadDatasetFile reads and decodes the dataset at path.
func ReadDatasetFile(path string) (station.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return station.Dataset{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
		}
		return station.Dataset{}, fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeDataset(data, path)
}

// MarshalDataset encodes a dataset. JSON output is indented by two spaces.
func MarshalDataset(ds station.Dataset, format Format) ([]byte, error) {
	ds = Normalize(ds)
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(ds, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode dataset: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return nil, fmt.Errorf("encode dataset: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode dataset: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format: %q", format)
}

// WriteDataset encodes ds to w.
func WriteDataset(ds station.Dataset, w io.Writer, format Format) error {
	data, err := MarshalDataset(ds, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteDatasetFile writes ds to path in the format implied by its
// extension, defaulting to JSON.
func WriteDatasetFile(ds station.Dataset, path string) error {
	format := FormatJSON
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		format = FormatYAML
	}
	data, err := MarshalDataset(ds, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// =============================================================================
// Internal Implementation
// =============================================================================

// validateDataset rejects records that cannot be addressed. Topology
// problems (missing references, cycles, duplicates) are left to the layout
// engine.
func validateDataset(ds station.Dataset) error {
	for i, n := range ds.Nodes {
		if n.ID < 0 {
			return errors.New(errors.ErrCodeInvalidDataset, "prod_machine_map[%d]: negative id %d", i, n.ID)
		}
	}
	return nil
}

// Normalize replaces nil slices so encoded documents always carry arrays.
func Normalize(ds station.Dataset) station.Dataset {
	if ds.Nodes == nil {
		ds.Nodes = []station.MachineNode{}
	}
	if ds.BypassList == nil {
		ds.BypassList = []string{}
	}
	if ds.NotAllowedList == nil {
		ds.NotAllowedList = []string{}
	}
	nodes := make([]station.MachineNode, len(ds.Nodes))
	for i, n := range ds.Nodes {
		if n.InputStations == nil {
			n.InputStations = []int{}
		}
		nodes[i] = n
	}
	ds.Nodes = nodes
	return ds
}
