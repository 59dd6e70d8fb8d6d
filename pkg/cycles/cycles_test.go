package cycles

import (
	"encoding/json"
	"math"
	"reflect"
	"slices"
	"testing"
)

const predictionJSON = `{
  "cycles": {
    "1700600000": {"data": {"T1": {"distance": 310.5, "anomaly": true}, "T2": {"distance": 12}}},
    "1700000000": {"data": {"T1": {"distance": 120, "anomaly": false}}},
    "1700300000": {"data": {"T2": {"distance": 40, "anomaly": false}}},
    "not-a-time": {"data": {"T1": {"distance": 1}}}
  }
}`

const changelogJSON = `{
  "Result": [
    {
      "learned_parameters": {
        "T1": {"threshold": 250, "average_list": [1.5, "2.5", 3]},
        "T2": {"threshold": 0}
      },
      "config_parameters": {"sequence": {"T1": {"min_points": 10, "max_points": 500}}}
    },
    {"learned_parameters": {"T1": {"threshold": 999}}}
  ]
}`

const cycleDataJSON = `{
  "Result": {
    "data": {
      "1700000000": {"cycle_data": {"torque": {"0.2": 5, "0.0": 1, "0.1": "3"}, "speed": {"0.0": 100}}},
      "1700300000": {"cycle_data": {}}
    }
  }
}`

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func ptr[T any](v T) *T { return &v }

func TestFilterByTool(t *testing.T) {
	pred := decode[Prediction](t, predictionJSON)
	cl := decode[Changelog](t, changelogJSON)

	s := FilterByTool(pred, &cl, "T1")

	want := []Point{
		{X: 1700000000, Y: ptr(120.0), Anomaly: ptr(false), CycleID: "1700000000"},
		{X: 1700300000, CycleID: "1700300000"},
		{X: 1700600000, Y: ptr(310.5), Anomaly: ptr(true), CycleID: "1700600000"},
	}
	if !reflect.DeepEqual(s.ScatterData, want) {
		t.Errorf("ScatterData = %+v, want %+v", s.ScatterData, want)
	}
	if s.Threshold == nil || *s.Threshold != 250 {
		t.Errorf("Threshold = %v, want 250 from the first result", s.Threshold)
	}
	if !slices.Equal(s.IdealSignal, []float64{1.5, 2.5, 3}) {
		t.Errorf("IdealSignal = %v", s.IdealSignal)
	}
	if l := s.ValidationLimits; l.MinPoints == nil || *l.MinPoints != 10 || l.MaxPoints == nil || *l.MaxPoints != 500 {
		t.Errorf("ValidationLimits = %+v", l)
	}
}

func TestFilterByToolMissingParameters(t *testing.T) {
	pred := decode[Prediction](t, predictionJSON)
	cl := decode[Changelog](t, changelogJSON)

	tests := []struct {
		name      string
		changelog *Changelog
		tool      string
	}{
		{"zero threshold", &cl, "T2"},
		{"unknown tool", &cl, "T9"},
		{"no changelog", nil, "T1"},
		{"empty changelog", &Changelog{}, "T1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := FilterByTool(pred, tt.changelog, tt.tool)
			if s.Threshold != nil {
				t.Errorf("Threshold = %v, want nil", *s.Threshold)
			}
			if s.IdealSignal == nil || len(s.IdealSignal) != 0 {
				t.Errorf("IdealSignal = %#v, want empty", s.IdealSignal)
			}
			if s.ValidationLimits.MinPoints != nil || s.ValidationLimits.MaxPoints != nil {
				t.Errorf("ValidationLimits = %+v, want nil limits", s.ValidationLimits)
			}
			if len(s.ScatterData) != 3 {
				t.Errorf("ScatterData = %d points, want 3", len(s.ScatterData))
			}
		})
	}
}

func TestTools(t *testing.T) {
	pred := decode[Prediction](t, predictionJSON)
	if got := Tools(pred); !slices.Equal(got, []string{"T1", "T2"}) {
		t.Errorf("Tools = %v", got)
	}
}

func TestMapCycleData(t *testing.T) {
	doc := decode[CycleDataDoc](t, cycleDataJSON)

	tests := []struct {
		cycle string
		want  []XY
	}{
		{"1700000000", []XY{{0, 1}, {0.1, 3}, {0.2, 5}}},
		{"1700300000", []XY{}},
		{"missing", []XY{}},
	}
	for _, tt := range tests {
		t.Run(tt.cycle, func(t *testing.T) {
			got := MapCycleData(doc, tt.cycle)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MapCycleData = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignalsKeepOrder(t *testing.T) {
	doc := decode[CycleDataDoc](t, cycleDataJSON)
	sig := doc.Result.Data["1700000000"].CycleData
	if len(sig) != 2 || sig[0].Name != "torque" || sig[1].Name != "speed" {
		t.Errorf("signals = %+v, want torque then speed", sig)
	}
}

func TestSignalsRejectNonObject(t *testing.T) {
	var s Signals
	if err := json.Unmarshal([]byte(`[1,2]`), &s); err == nil {
		t.Error("expected error for array cycle_data")
	}
}

func TestAlignIdeal(t *testing.T) {
	actual := []XY{{0.2, 5}, {0, 1}, {0.1, 3}}

	tests := []struct {
		name  string
		ideal []float64
		want  []XY
	}{
		{"same length", []float64{9, 8, 7}, []XY{{0, 9}, {0.1, 8}, {0.2, 7}}},
		{"extra ideal dropped", []float64{9, 8, 7, 6, 5}, []XY{{0, 9}, {0.1, 8}, {0.2, 7}}},
		{"short ideal", []float64{9}, []XY{{0, 9}}},
		{"no ideal", nil, []XY{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlignIdeal(actual, tt.ideal); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AlignIdeal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	if _, _, _, ok := Bounds(nil); ok {
		t.Error("Bounds(nil) ok = true")
	}

	points := []Point{
		{X: 30, Y: ptr(-5.0)},
		{X: 10},
		{X: 20, Y: ptr(-1.0)},
	}
	minX, maxX, maxY, ok := Bounds(points)
	if !ok || minX != 10 || maxX != 30 || maxY != 0 {
		t.Errorf("Bounds = %v %v %v %v, want 10 30 0 true", minX, maxX, maxY, ok)
	}
}

func TestXTicks(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		want       []float64
	}{
		{"aligned start", 0, 2 * Week, []float64{0, Week, 2 * Week}},
		{"rounds up", 1, 2*Week + 5, []float64{Week, 2 * Week}},
		{"end before first boundary", 1, Week - 1, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := XTicks(tt.start, tt.end); !slices.Equal(got, tt.want) {
				t.Errorf("XTicks = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestYTicks(t *testing.T) {
	tests := []struct {
		maxY float64
		want []float64
	}{
		{0, []float64{0, 200}},
		{150, []float64{0, 200}},
		{200, []float64{0, 200, 400}},
		{450, []float64{0, 200, 400, 600}},
	}
	for _, tt := range tests {
		if got := YTicks(tt.maxY); !slices.Equal(got, tt.want) {
			t.Errorf("YTicks(%v) = %v, want %v", tt.maxY, got, tt.want)
		}
	}
}

func TestTicksHugeRange(t *testing.T) {
	tests := []struct {
		name  string
		ticks []float64
		step  float64 // 0 skips the step check where float spacing is inexact
	}{
		{"x weeks", XTicks(0, 6048000000000), Week},
		{"x epoch max", XTicks(-9e18, 9e18), 0},
		{"y billions", YTicks(2e9), YStep},
		{"y beyond float step", YTicks(1e19), YStep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if n := len(tt.ticks); n == 0 || n > MaxTicks+1 {
				t.Fatalf("len = %d, want 1..%d", n, MaxTicks+1)
			}
			for i := 1; i < len(tt.ticks); i++ {
				d := tt.ticks[i] - tt.ticks[i-1]
				if d <= 0 || (tt.step > 0 && math.Mod(d, tt.step) != 0) {
					t.Fatalf("tick %d step %v is not a positive multiple of %v", i, d, tt.step)
				}
			}
		})
	}
}

func TestTicksDegenerate(t *testing.T) {
	if got := XTicks(math.NaN(), 10); len(got) != 0 {
		t.Errorf("XTicks(NaN) = %v", got)
	}
	if got := YTicks(math.Inf(1)); len(got) != 0 {
		t.Errorf("YTicks(+Inf) = %v", got)
	}
	if got := YTicks(-1000); len(got) != 0 {
		t.Errorf("YTicks(-1000) = %v", got)
	}
}

func TestPointColor(t *testing.T) {
	if got := PointColor(ptr(true)); got != ColorAnomaly {
		t.Errorf("anomaly colour = %s", got)
	}
	if got := PointColor(ptr(false)); got != ColorNormal {
		t.Errorf("normal colour = %s", got)
	}
	if got := PointColor(nil); got != ColorUnknown {
		t.Errorf("unknown colour = %s", got)
	}
}

func TestParseEpoch(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1700000000", 1700000000, true},
		{"1700000000.75", 1700000000, true},
		{"-5", -5, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseEpoch(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseEpoch(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNumber(t *testing.T) {
	var vals []Number
	if err := json.Unmarshal([]byte(`[1, "2.5", " 3 ", null]`), &vals); err != nil {
		t.Fatal(err)
	}
	want := []Number{1, 2.5, 3, 0}
	if !slices.Equal(vals, want) {
		t.Errorf("got %v, want %v", vals, want)
	}

	var n Number
	if err := json.Unmarshal([]byte(`"abc"`), &n); err == nil {
		t.Error("expected error for non-numeric string")
	}
}

func TestBuildChart(t *testing.T) {
	pred := decode[Prediction](t, predictionJSON)
	cl := decode[Changelog](t, changelogJSON)

	c := BuildChart(pred, &cl, "T1")

	if c.MinX != 1700000000 || c.MaxX != 1700600000 || c.MaxY != 310.5 {
		t.Errorf("bounds = %v %v %v", c.MinX, c.MaxX, c.MaxY)
	}
	if !slices.Equal(c.Colors, []string{ColorNormal, ColorUnknown, ColorAnomaly}) {
		t.Errorf("Colors = %v", c.Colors)
	}
	if !slices.Equal(c.YTicks, []float64{0, 200, 400}) {
		t.Errorf("YTicks = %v", c.YTicks)
	}
	for _, x := range c.XTicks {
		if x < c.MinX || x > c.MaxX || math.Mod(x, Week) != 0 {
			t.Errorf("tick %v outside range or off boundary", x)
		}
	}
	if len(c.XTicks) == 0 {
		t.Error("no x ticks over a week-long range")
	}
}

func TestBuildChartEmpty(t *testing.T) {
	c := BuildChart(Prediction{}, nil, "T1")
	if len(c.ScatterData) != 0 || len(c.XTicks) != 0 {
		t.Errorf("chart = %+v, want empty", c)
	}
	if !slices.Equal(c.YTicks, []float64{0, 200}) {
		t.Errorf("YTicks = %v", c.YTicks)
	}
}

func TestCompare(t *testing.T) {
	doc := decode[CycleDataDoc](t, cycleDataJSON)
	c := Compare(doc, "1700000000", []float64{2, 4})

	if len(c.Actual) != 3 {
		t.Errorf("Actual = %v", c.Actual)
	}
	if want := []XY{{0, 2}, {0.1, 4}}; !reflect.DeepEqual(c.Ideal, want) {
		t.Errorf("Ideal = %v, want %v", c.Ideal, want)
	}
}
