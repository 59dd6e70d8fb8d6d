package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stationmap/pkg/cache"
	"github.com/matzehuels/stationmap/pkg/cycles"
	"github.com/matzehuels/stationmap/pkg/layout"
	"github.com/matzehuels/stationmap/pkg/pipeline"
	"github.com/matzehuels/stationmap/pkg/station"
)

const datasetJSON = `{
  "prod_machine_map": [
    {"id": 1, "name": "Press", "station_number": "10", "input_stations": []},
    {"id": 2, "name": "Weld", "station_number": "20", "input_stations": [1]},
    {"id": 3, "name": "Spare", "station_number": "90", "input_stations": []}
  ],
  "bypass_list": ["2"],
  "not_allowed_list": []
}`

const datasetYAML = `prod_machine_map:
  - id: 1
    name: Press
    station_number: "10"
    input_stations: []
  - id: 2
    name: Weld
    station_number: "20"
    input_stations: [1]
bypass_list: []
not_allowed_list: ["1"]
`

const predictionJSON = `{
  "cycles": {
    "1700000000": {"data": {"T1": {"distance": 120, "anomaly": false}}},
    "1700600000": {"data": {"T1": {"distance": 310.5, "anomaly": true}, "T2": {"distance": 4}}}
  }
}`

const changelogJSON = `{
  "Result": [
    {"learned_parameters": {"T1": {"threshold": 250, "average_list": [2, 4]}}}
  ]
}`

const cycleDataJSON = `{
  "Result": {
    "data": {
      "1700000000": {"cycle_data": {"torque": {"0.0": 1, "0.1": 3, "0.2": 5}}}
    }
  }
}`

func newTestServer(t *testing.T, c cache.Cache, cfg Config) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(c, nil, logger)
	s, err := New(runner, cfg, nil, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// dataRoot serves the dashboard documents for machine M1.
func dataRoot(t *testing.T) *httptest.Server {
	t.Helper()
	docs := map[string]string{
		"/treeDataJSON/graphViz.json":                           datasetJSON,
		"/Scatter Data JSON/M1/prediction_data.json":            predictionJSON,
		"/Scatter Data JSON/M1/changelog.json":                  changelogJSON,
		"/Scatter Data JSON/M1/timeseries_cycledata_green.json": cycleDataJSON,
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, doc)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func wantStatus(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	if resp.StatusCode != status {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d: %s", resp.StatusCode, status, body)
	}
}

func wantErrorCode(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	wantStatus(t, resp, status)
	body := decodeBody[errorBody](t, resp)
	if string(body.Error.Code) != code {
		t.Errorf("code = %q, want %q", body.Error.Code, code)
	}
	if body.RequestID == "" {
		t.Error("error body has no request_id")
	}
}

// =============================================================================
// Health
// =============================================================================

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	resp := do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	wantStatus(t, resp, http.StatusOK)
	body := decodeBody[healthResponse](t, resp)
	if body.Status != "ok" {
		t.Errorf("status = %q", body.Status)
	}
	if body.Build.GoVersion == "" {
		t.Error("build info has no Go version")
	}
}

func TestStats(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	resp := do(t, http.MethodGet, ts.URL+"/api/stats", "", "")
	wantStatus(t, resp, http.StatusOK)
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	t.Run("generated", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/healthz", "", "")
		if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
			t.Errorf("request id %q: %v", resp.Header.Get(RequestIDHeader), err)
		}
	})

	t.Run("reused", func(t *testing.T) {
		id := uuid.NewString()
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
		req.Header.Set(RequestIDHeader, id)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if got := resp.Header.Get(RequestIDHeader); got != id {
			t.Errorf("request id = %q, want %q", got, id)
		}
	})

	t.Run("invalid replaced", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
		req.Header.Set(RequestIDHeader, "not a uuid")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if got := resp.Header.Get(RequestIDHeader); got == "not a uuid" {
			t.Error("invalid request id was echoed")
		}
	})
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	resp := do(t, http.MethodGet, ts.URL+"/api/nope", "", "")
	wantErrorCode(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	resp := do(t, http.MethodDelete, ts.URL+"/api/layout", "", "")
	wantStatus(t, resp, http.StatusMethodNotAllowed)
}

// =============================================================================
// Layout
// =============================================================================

func TestLayoutPost(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	resp := do(t, http.MethodPost, ts.URL+"/api/layout", "application/json", datasetJSON)
	wantStatus(t, resp, http.StatusOK)
	res := decodeBody[layout.Result](t, resp)

	if len(res.PositionedNodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(res.PositionedNodes))
	}
	weld, _ := res.Node(2)
	if weld.Depth != 1 || weld.Category != station.CategoryBypass {
		t.Errorf("weld = %+v, want depth 1 bypass", weld)
	}
	if len(res.Edges) != 1 || res.Edges[0] != (layout.Edge{Source: 1, Target: 2}) {
		t.Errorf("edges = %v", res.Edges)
	}
	if len(res.DisconnectedNodes) != 1 || res.DisconnectedNodes[0].ID != 3 {
		t.Errorf("disconnected = %v", res.DisconnectedNodes)
	}
}

func TestLayoutPostYAML(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	resp := do(t, http.MethodPost, ts.URL+"/api/layout?strategy=kahn", "application/yaml", datasetYAML)
	wantStatus(t, resp, http.StatusOK)
	res := decodeBody[layout.Result](t, resp)

	press, _ := res.Node(1)
	if press.Category != station.CategoryNotAllowed {
		t.Errorf("press category = %q", press.Category)
	}
}

func TestLayoutSpacing(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	resp := do(t, http.MethodPost, ts.URL+"/api/layout?level_spacing=100", "application/json", datasetJSON)
	wantStatus(t, resp, http.StatusOK)
	res := decodeBody[layout.Result](t, resp)
	if weld, _ := res.Node(2); weld.Y != 100 {
		t.Errorf("weld.Y = %v, want 100", weld.Y)
	}
}

func TestLayoutCacheHeader(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, fc, Config{})

	first := do(t, http.MethodPost, ts.URL+"/api/layout", "application/json", datasetJSON)
	wantStatus(t, first, http.StatusOK)
	if got := first.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}

	second := do(t, http.MethodPost, ts.URL+"/api/layout", "application/json", datasetJSON)
	wantStatus(t, second, http.StatusOK)
	if got := second.Header.Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}

	refreshed := do(t, http.MethodPost, ts.URL+"/api/layout?refresh=true", "application/json", datasetJSON)
	if got := refreshed.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("refreshed X-Cache = %q, want miss", got)
	}
}

func TestLayoutBadRequests(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	tests := []struct {
		name  string
		query string
		body  string
		code  string
	}{
		{"bad strategy", "?strategy=magic", datasetJSON, "INVALID_INPUT"},
		{"bad spacing", "?node_width=-3", datasetJSON, "INVALID_INPUT"},
		{"non-numeric spacing", "?level_spacing=wide", datasetJSON, "INVALID_INPUT"},
		{"bad json", "", `{"prod_machine_map": [`, "INVALID_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/api/layout"+tt.query, "application/json", tt.body)
			wantErrorCode(t, resp, http.StatusBadRequest, tt.code)
		})
	}
}

func TestLayoutBodyTooLarge(t *testing.T) {
	ts := newTestServer(t, nil, Config{MaxBodyBytes: 16})
	resp := do(t, http.MethodPost, ts.URL+"/api/layout", "application/json", datasetJSON)
	wantErrorCode(t, resp, http.StatusBadRequest, "INVALID_INPUT")
}

func TestLayoutSource(t *testing.T) {
	root := dataRoot(t)
	ts := newTestServer(t, nil, Config{})

	resp := do(t, http.MethodGet, ts.URL+"/api/layout?source="+root.URL+"/treeDataJSON/graphViz.json", "", "")
	wantStatus(t, resp, http.StatusOK)
	res := decodeBody[layout.Result](t, resp)
	if len(res.PositionedNodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(res.PositionedNodes))
	}
}

func TestLayoutSourceDefaultsToDataRoot(t *testing.T) {
	root := dataRoot(t)
	ts := newTestServer(t, nil, Config{DataURL: root.URL})

	resp := do(t, http.MethodGet, ts.URL+"/api/layout", "", "")
	wantStatus(t, resp, http.StatusOK)
}

func TestLayoutSourceErrors(t *testing.T) {
	root := dataRoot(t)
	ts := newTestServer(t, nil, Config{})

	t.Run("missing", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/api/layout", "", "")
		wantErrorCode(t, resp, http.StatusBadRequest, "INVALID_INPUT")
	})
	t.Run("local path", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/api/layout?source=/etc/passwd", "", "")
		wantErrorCode(t, resp, http.StatusBadRequest, "INVALID_INPUT")
	})
	t.Run("upstream 404", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/api/layout?source="+root.URL+"/missing.json", "", "")
		if resp.StatusCode < 400 {
			t.Errorf("status = %d, want an error", resp.StatusCode)
		}
	})
}

func TestNewRejectsBadDataURL(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	if _, err := New(runner, Config{DataURL: "ftp://example.com"}, nil, nil); err == nil {
		t.Error("expected error for non-http data url")
	}
}

// =============================================================================
// Render
// =============================================================================

func TestRenderDOT(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	resp := do(t, http.MethodPost, ts.URL+"/api/render?format=dot", "application/json", datasetJSON)
	wantStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "digraph G {") {
		t.Errorf("body = %q", body)
	}
	if !strings.Contains(string(body), `"n1" -> "n2"`) {
		t.Errorf("missing edge in %s", body)
	}
}

func TestRenderJSON(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	resp := do(t, http.MethodPost, ts.URL+"/api/render?format=json", "application/json", datasetJSON)
	wantStatus(t, resp, http.StatusOK)
	res := decodeBody[layout.Result](t, resp)
	if len(res.PositionedNodes) != 3 {
		t.Errorf("nodes = %d", len(res.PositionedNodes))
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	resp := do(t, http.MethodPost, ts.URL+"/api/render?format=gif", "application/json", datasetJSON)
	wantErrorCode(t, resp, http.StatusBadRequest, "INVALID_INPUT")
}

// =============================================================================
// Edit
// =============================================================================

func editBody(nodeID int, category string) string {
	return `{"dataset": ` + datasetJSON + `, "node_id": ` + itoa(nodeID) +
		`, "fields": {"name": "Laser", "station_number": "30"}, "category": "` + category + `"}`
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestEdit(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	resp := do(t, http.MethodPost, ts.URL+"/api/edit", "application/json", editBody(2, "notAllowed"))
	wantStatus(t, resp, http.StatusOK)
	body := decodeBody[editResponse](t, resp)

	if len(body.Dataset.BypassList) != 0 {
		t.Errorf("bypass = %v, want empty", body.Dataset.BypassList)
	}
	if len(body.Dataset.NotAllowedList) != 1 || body.Dataset.NotAllowedList[0] != "2" {
		t.Errorf("notAllowed = %v", body.Dataset.NotAllowedList)
	}
	n, ok := body.Layout.Node(2)
	if !ok || n.Name != "Laser" || n.StationNumber != "30" || n.Category != station.CategoryNotAllowed {
		t.Errorf("node 2 = %+v", n)
	}
}

func TestEditErrors(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	t.Run("unknown node", func(t *testing.T) {
		resp := do(t, http.MethodPost, ts.URL+"/api/edit", "application/json", editBody(42, "normal"))
		wantErrorCode(t, resp, http.StatusNotFound, "NODE_NOT_FOUND")
	})
	t.Run("bad category", func(t *testing.T) {
		resp := do(t, http.MethodPost, ts.URL+"/api/edit", "application/json", editBody(2, "broken"))
		wantErrorCode(t, resp, http.StatusBadRequest, "INVALID_CATEGORY")
	})
	t.Run("unknown field", func(t *testing.T) {
		resp := do(t, http.MethodPost, ts.URL+"/api/edit", "application/json", `{"datasets": {}}`)
		wantErrorCode(t, resp, http.StatusBadRequest, "INVALID_FORMAT")
	})
}

// =============================================================================
// Cycles
// =============================================================================

func TestScatter(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	body := `{"prediction": ` + predictionJSON + `, "changelog": ` + changelogJSON + `, "tool": "T1"}`
	resp := do(t, http.MethodPost, ts.URL+"/api/scatter", "application/json", body)
	wantStatus(t, resp, http.StatusOK)
	chart := decodeBody[scatterResponse](t, resp)

	if len(chart.ScatterData) != 2 {
		t.Fatalf("points = %d, want 2", len(chart.ScatterData))
	}
	if chart.Colors[1] != cycles.ColorAnomaly {
		t.Errorf("colors = %v", chart.Colors)
	}
	if chart.Threshold == nil || *chart.Threshold != 250 {
		t.Errorf("threshold = %v", chart.Threshold)
	}
	if len(chart.Tools) != 2 {
		t.Errorf("tools = %v", chart.Tools)
	}
}

func TestScatterWideRange(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	body := `{"prediction": {"cycles": {
	  "0": {"data": {"T1": {"distance": 1}}},
	  "9000000000000000000": {"data": {"T1": {"distance": 1e300}}}
	}}, "tool": "T1"}`
	resp := do(t, http.MethodPost, ts.URL+"/api/scatter", "application/json", body)
	wantStatus(t, resp, http.StatusOK)
	chart := decodeBody[scatterResponse](t, resp)

	if len(chart.XTicks) > cycles.MaxTicks+1 || len(chart.YTicks) > cycles.MaxTicks+1 {
		t.Errorf("ticks = %d/%d, want at most %d", len(chart.XTicks), len(chart.YTicks), cycles.MaxTicks+1)
	}
}

func TestScatterRequiresTool(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	resp := do(t, http.MethodPost, ts.URL+"/api/scatter", "application/json", `{"prediction": `+predictionJSON+`}`)
	wantErrorCode(t, resp, http.StatusBadRequest, "INVALID_INPUT")
}

func TestCycle(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	body := `{"cycle_data": ` + cycleDataJSON + `, "ideal": [2, 4]}`
	resp := do(t, http.MethodPost, ts.URL+"/api/cycle?cycle=1700000000", "application/json", body)
	wantStatus(t, resp, http.StatusOK)
	cmp := decodeBody[cycles.Comparison](t, resp)
	if len(cmp.Actual) != 3 || len(cmp.Ideal) != 2 {
		t.Errorf("comparison = %+v", cmp)
	}

	missing := do(t, http.MethodPost, ts.URL+"/api/cycle?cycle=42", "application/json", body)
	wantErrorCode(t, missing, http.StatusNotFound, "CYCLE_NOT_FOUND")

	noID := do(t, http.MethodPost, ts.URL+"/api/cycle", "application/json", body)
	wantErrorCode(t, noID, http.StatusBadRequest, "INVALID_INPUT")
}

func TestMachineRoutes(t *testing.T) {
	root := dataRoot(t)
	ts := newTestServer(t, nil, Config{DataURL: root.URL})

	t.Run("scatter", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/api/machines/M1/scatter?tool=T1", "", "")
		wantStatus(t, resp, http.StatusOK)
		chart := decodeBody[scatterResponse](t, resp)
		if len(chart.ScatterData) != 2 {
			t.Errorf("points = %d", len(chart.ScatterData))
		}
	})

	t.Run("cycle", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/api/machines/M1/cycles/1700000000?tool=T1", "", "")
		wantStatus(t, resp, http.StatusOK)
		cmp := decodeBody[cycles.Comparison](t, resp)
		want := []cycles.XY{{X: 0, Y: 2}, {X: 0.1, Y: 4}}
		if len(cmp.Ideal) != len(want) || cmp.Ideal[0] != want[0] || cmp.Ideal[1] != want[1] {
			t.Errorf("ideal = %v, want %v", cmp.Ideal, want)
		}
	})

	t.Run("unknown cycle", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/api/machines/M1/cycles/1?tool=T1", "", "")
		wantErrorCode(t, resp, http.StatusNotFound, "CYCLE_NOT_FOUND")
	})

	t.Run("missing tool", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/api/machines/M1/cycles/1700000000", "", "")
		wantErrorCode(t, resp, http.StatusBadRequest, "INVALID_INPUT")
	})

	t.Run("unknown machine", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/api/machines/M9/scatter?tool=T1", "", "")
		if resp.StatusCode < 400 {
			t.Errorf("status = %d, want an error", resp.StatusCode)
		}
	})
}

func TestMachineRoutesNeedDataRoot(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	resp := do(t, http.MethodGet, ts.URL+"/api/machines/M1/scatter?tool=T1", "", "")
	wantErrorCode(t, resp, http.StatusNotImplemented, "UNSUPPORTED")
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestServeShutsDownOnCancel(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	s, err := New(runner, Config{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
