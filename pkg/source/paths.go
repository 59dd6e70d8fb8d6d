package source

import (
	"net/url"

	"github.com/matzehuels/stationmap/pkg/errors"
)

// Document locations under a dashboard data root.
const (
	datasetPath   = "treeDataJSON/graphViz.json"
	cycleDir      = "Scatter Data JSON"
	changelogFile = "changelog.json"
	predictFile   = "prediction_data.json"
)

// Paths resolves the documents a dashboard data root serves.
type Paths struct {
	base string
}

// NewPaths validates base, an http(s) URL.
func NewPaths(base string) (Paths, error) {
	if err := errors.ValidateURL(base); err != nil {
		return Paths{}, err
	}
	return Paths{base: base}, nil
}

// Dataset returns the machine-map URL.
func (p Paths) Dataset() string { return p.join(datasetPath) }

// Changelog returns the changelog URL of a machine.
func (p Paths) Changelog(machineID string) string {
	return p.join(cycleDir, machineID, changelogFile)
}

// Prediction returns the prediction URL of a machine.
func (p Paths) Prediction(machineID string) string {
	return p.join(cycleDir, machineID, predictFile)
}

// CycleData returns the URL of a machine's raw cycle signals. The variant
// selects one of several exports ("green", "red") of the same machine.
func (p Paths) CycleData(machineID, variant string) string {
	return p.join(cycleDir, machineID, "timeseries_cycledata_"+variant+".json")
}

func (p Paths) join(elem ...string) string {
	u, err := url.JoinPath(p.base, elem...)
	if err != nil {
		return ""
	}
	return u
}
