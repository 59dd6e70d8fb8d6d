package cycles

import (
	"cmp"
	"math"
	"slices"
	"strconv"
)

// Week is the spacing of [XTicks] in seconds.
const Week = 7 * 24 * 60 * 60

// YStep is the spacing of [YTicks].
const YStep = 200

// MaxTicks bounds the length of [XTicks] and [YTicks]. Wider ranges use a
// multiple of the base step.
const MaxTicks = 1000

// Point colours.
const (
	ColorAnomaly = "#c62828"
	ColorNormal  = "#4caf50"
	ColorUnknown = "#333333"
)

// FilterByTool builds the scatter series of one tool. Points are sorted by x;
// cycle keys without a leading integer are skipped. A missing or zero
// threshold is reported as nil.
func FilterByTool(prediction Prediction, changelog *Changelog, tool string) Series {
	s := Series{
		ScatterData: make([]Point, 0, len(prediction.Cycles)),
		IdealSignal: []float64{},
	}

	for key, c := range prediction.Cycles {
		x, ok := parseEpoch(key)
		if !ok {
			continue
		}
		p := Point{X: float64(x), CycleID: key}
		if r, ok := c.Data[tool]; ok {
			p.Y = r.Distance
			p.Anomaly = r.Anomaly
		}
		s.ScatterData = append(s.ScatterData, p)
	}
	slices.SortFunc(s.ScatterData, func(a, b Point) int {
		return cmp.Or(cmp.Compare(a.X, b.X), cmp.Compare(a.CycleID, b.CycleID))
	})

	if changelog == nil || len(changelog.Result) == 0 {
		return s
	}
	entry := changelog.Result[0]
	if lp, ok := entry.LearnedParameters[tool]; ok {
		if lp.Threshold != nil && *lp.Threshold != 0 {
			s.Threshold = lp.Threshold
		}
		for _, v := range lp.AverageList {
			s.IdealSignal = append(s.IdealSignal, float64(v))
		}
	}
	if sc, ok := entry.ConfigParameters.Sequence[tool]; ok {
		s.ValidationLimits = Limits{MinPoints: sc.MinPoints, MaxPoints: sc.MaxPoints}
	}
	return s
}

// Tools lists every tool that has a reading in any cycle, sorted.
func Tools(prediction Prediction) []string {
	seen := make(map[string]bool)
	for _, c := range prediction.Cycles {
		for tool := range c.Data {
			seen[tool] = true
		}
	}
	tools := make([]string, 0, len(seen))
	for t := range seen {
		tools = append(tools, t)
	}
	slices.Sort(tools)
	return tools
}

// MapCycleData returns the first signal of the given cycle as points sorted
// by x. Missing cycles and cycles without signals yield an empty slice.
func MapCycleData(doc CycleDataDoc, cycleID string) []XY {
	c, ok := doc.Result.Data[cycleID]
	if !ok || len(c.CycleData) == 0 {
		return []XY{}
	}
	samples := c.CycleData[0].Samples

	out := make([]XY, 0, len(samples))
	for t, v := range samples {
		x, err := strconv.ParseFloat(t, 64)
		if err != nil {
			continue
		}
		out = append(out, XY{X: x, Y: float64(v)})
	}
	slices.SortFunc(out, func(a, b XY) int { return cmp.Compare(a.X, b.X) })
	return out
}

// HasCycle reports whether the document holds the given cycle.
func HasCycle(doc CycleDataDoc, cycleID string) bool {
	_, ok := doc.Result.Data[cycleID]
	return ok
}

// AlignIdeal pairs the i-th ideal value with the i-th x of actual, in x
// order. Ideal values beyond the length of actual are dropped.
func AlignIdeal(actual []XY, ideal []float64) []XY {
	xs := make([]float64, len(actual))
	for i, p := range actual {
		xs[i] = p.X
	}
	slices.Sort(xs)

	n := min(len(xs), len(ideal))
	out := make([]XY, n)
	for i := range n {
		out[i] = XY{X: xs[i], Y: ideal[i]}
	}
	return out
}

// Bounds returns the x range and the largest y of points. A nil y counts as
// 0. ok is false for an empty slice.
func Bounds(points []Point) (minX, maxX, maxY float64, ok bool) {
	if len(points) == 0 {
		return 0, 0, 0, false
	}
	minX, maxX, maxY = math.Inf(1), math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		y := 0.0
		if p.Y != nil {
			y = *p.Y
		}
		maxY = max(maxY, y)
	}
	return minX, maxX, maxY, true
}

// XTicks returns weekly ticks from the first week boundary at or after start
// up to end. Ranges longer than [MaxTicks] weeks are ticked every n weeks.
func XTicks(start, end float64) []float64 {
	first := math.Ceil(start/Week) * Week
	return ticks(first, end, Week)
}

// YTicks returns 0, YStep, 2*YStep, ... up to maxY+YStep. Ranges longer than
// [MaxTicks] steps are ticked every n steps.
func YTicks(maxY float64) []float64 {
	return ticks(0, maxY+YStep, YStep)
}

// ticks returns first, first+step, ... up to last, widening step to a
// multiple of itself so that at most MaxTicks+1 values are produced.
func ticks(first, last, step float64) []float64 {
	out := []float64{}
	if math.IsNaN(first) || math.IsInf(first, 0) || math.IsNaN(last) || math.IsInf(last, 0) || first > last {
		return out
	}
	if n := (last - first) / step; n > MaxTicks {
		step *= math.Ceil(n / MaxTicks)
	}
	for i := 0; i <= MaxTicks; i++ {
		t := first + float64(i)*step
		if t > last {
			break
		}
		out = append(out, t)
	}
	return out
}

// PointColor returns the colour of a scatter point.
func PointColor(anomaly *bool) string {
	switch {
	case anomaly == nil:
		return ColorUnknown
	case *anomaly:
		return ColorAnomaly
	}
	return ColorNormal
}

// parseEpoch reads the leading decimal integer of key.
func parseEpoch(key string) (int64, bool) {
	end := 0
	if end < len(key) && (key[end] == '-' || key[end] == '+') {
		end++
	}
	digits := end
	for end < len(key) && key[end] >= '0' && key[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.ParseInt(key[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
