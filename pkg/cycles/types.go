package cycles

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number is a float that decodes from a JSON number or a numeric string.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	*n = Number(f)
	return nil
}

// =============================================================================
// Prediction document
// =============================================================================

// Prediction is the per-cycle prediction document of one machine.
type Prediction struct {
	Cycles map[string]Cycle `json:"cycles"`
}

// Cycle holds the readings of one cycle, keyed by tool.
type Cycle struct {
	Data map[string]Reading `json:"data"`
}

// Reading is one tool's result for one cycle. Either field may be absent.
type Reading struct {
	Distance *float64 `json:"distance"`
	Anomaly  *bool    `json:"anomaly"`
}

// =============================================================================
// Changelog document
// =============================================================================

// Changelog carries the learned model parameters of a machine. Only the first
// result is used.
type Changelog struct {
	Result []ChangelogEntry `json:"Result"`
}

// ChangelogEntry is one model revision.
type ChangelogEntry struct {
	LearnedParameters map[string]LearnedParameters `json:"learned_parameters"`
	ConfigParameters  ConfigParameters              `json:"config_parameters"`
}

// LearnedParameters are the per-tool results of training.
type LearnedParameters struct {
	Threshold   *float64 `json:"threshold"`
	AverageList []Number `json:"average_list"`
}

// ConfigParameters are the per-tool training settings.
type ConfigParameters struct {
	Sequence map[string]SequenceConfig `json:"sequence"`
}

// SequenceConfig bounds the number of points a cycle must have.
type SequenceConfig struct {
	MinPoints *int `json:"min_points"`
	MaxPoints *int `json:"max_points"`
}

// =============================================================================
// Cycle-data document
// =============================================================================

// CycleDataDoc holds raw signals per cycle. Signals keep their document order
// so the first signal of a cycle is well defined.
type CycleDataDoc struct {
	Result struct {
		Data map[string]CycleSignals `json:"data"`
	} `json:"Result"`
}

// CycleSignals is the cycle_data object of one cycle.
type CycleSignals struct {
	CycleData Signals `json:"cycle_data"`
}

// Signal is one named signal: sample values keyed by time offset.
type Signal struct {
	Name    string
	Samples map[string]Number
}

// Signals is an ordered list of signals.
type Signals []Signal

// UnmarshalJSON decodes an object of signals, preserving key order.
func (s *Signals) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		*s = nil
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("cycle_data: expected object")
	}

	var out Signals
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var samples map[string]Number
		if err := dec.Decode(&samples); err != nil {
			return fmt.Errorf("cycle_data %q: %w", name, err)
		}
		out = append(out, Signal{Name: name, Samples: samples})
	}
	*s = out
	return nil
}

// =============================================================================
// Chart series
// =============================================================================

// Point is one cycle in a scatter series. Y and Anomaly are nil when the
// cycle has no reading for the tool.
type Point struct {
	X       float64  `json:"x"`
	Y       *float64 `json:"y"`
	Anomaly *bool    `json:"anomaly"`
	CycleID string   `json:"cycleId"`
}

// Limits are the validation limits of a tool.
type Limits struct {
	MinPoints *int `json:"minPoints"`
	MaxPoints *int `json:"maxPoints"`
}

// Series is the scatter-plot input for one tool.
type Series struct {
	ScatterData      []Point   `json:"scatterData"`
	Threshold        *float64  `json:"threshold"`
	IdealSignal      []float64 `json:"idealSignal"`
	ValidationLimits Limits    `json:"validationLimits"`
}

// XY is a sample of a time series.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
