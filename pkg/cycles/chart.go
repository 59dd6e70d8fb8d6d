package cycles

// Chart is a scatter series with its axis ranges and ticks.
type Chart struct {
	Tool string `json:"tool"`
	Series
	MinX   float64   `json:"minX"`
	MaxX   float64   `json:"maxX"`
	MaxY   float64   `json:"maxY"`
	XTicks []float64 `json:"xTicks"`
	YTicks []float64 `json:"yTicks"`
	Colors []string  `json:"colors"`
}

// BuildChart filters the documents for tool and derives the axes. Colors
// holds one entry per scatter point.
func BuildChart(prediction Prediction, changelog *Changelog, tool string) Chart {
	s := FilterByTool(prediction, changelog, tool)
	c := Chart{
		Tool:   tool,
		Series: s,
		XTicks: []float64{},
		YTicks: YTicks(0),
		Colors: make([]string, len(s.ScatterData)),
	}
	for i, p := range s.ScatterData {
		c.Colors[i] = PointColor(p.Anomaly)
	}
	if minX, maxX, maxY, ok := Bounds(s.ScatterData); ok {
		c.MinX, c.MaxX, c.MaxY = minX, maxX, maxY
		c.XTicks = XTicks(minX, maxX)
		c.YTicks = YTicks(maxY)
	}
	return c
}

// Comparison is one cycle's signal with the aligned ideal signal.
type Comparison struct {
	CycleID string `json:"cycleId"`
	Actual  []XY   `json:"actual"`
	Ideal   []XY   `json:"ideal"`
}

// Compare extracts a cycle's first signal and aligns ideal with it.
func Compare(doc CycleDataDoc, cycleID string, ideal []float64) Comparison {
	actual := MapCycleData(doc, cycleID)
	return Comparison{
		CycleID: cycleID,
		Actual:  actual,
		Ideal:   AlignIdeal(actual, ideal),
	}
}
