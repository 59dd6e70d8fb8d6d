package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/stationmap/pkg/buildinfo"
	"github.com/matzehuels/stationmap/pkg/errors"
	"github.com/matzehuels/stationmap/pkg/graph"
	"github.com/matzehuels/stationmap/pkg/layout"
	"github.com/matzehuels/stationmap/pkg/pipeline"
	"github.com/matzehuels/stationmap/pkg/station"
)

// =============================================================================
// Health
// =============================================================================

type healthResponse struct {
	Status string         `json:"status"`
	Uptime string         `json:"uptime"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
		Build:  buildinfo.Get(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.recorder.Snapshot())
}

// =============================================================================
// Layout
// =============================================================================

// layoutOptions reads strategy and spacing overrides from the query string.
func layoutOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Strategy: q.Get("strategy"),
		Refresh:  q.Get("refresh") == "true",
		Detailed: q.Get("detailed") == "true",
	}
	floats := []struct {
		name string
		dst  *float64
	}{
		{"level_spacing", &opts.LevelSpacing},
		{"sibling_spacing", &opts.SiblingSpacing},
		{"node_width", &opts.NodeWidth},
		{"node_height", &opts.NodeHeight},
	}
	for _, f := range floats {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s: want a positive number, got %q", f.name, v)
		}
		*f.dst = n
	}
	if err := opts.ValidateForLayout(); err != nil {
		return opts, err
	}
	return opts, nil
}

// POST /api/layout
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := layoutOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ds, err := s.readDataset(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), ds, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	s.writeJSON(w, http.StatusOK, res)
}

// GET /api/layout?source=URL
func (s *Server) handleLayoutSource(w http.ResponseWriter, r *http.Request) {
	opts, err := layoutOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	src := r.URL.Query().Get("source")
	if src == "" {
		src = s.cfg.Source
	}
	if src == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "source is required"))
		return
	}
	// Only remote sources: the API must not read the server's filesystem.
	if err := errors.ValidateURL(src); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts.Source = src
	ds, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), ds, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	s.writeJSON(w, http.StatusOK, res)
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatJSON: "application/json",
}

// POST /api/render?format=svg
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := layoutOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	ds, err := s.readDataset(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Layout(r.Context(), ds, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), res, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setCacheHeader(w, hit)
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifacts[format]); err != nil {
		s.logger.Warn("write artifact", "err", err)
	}
}

// =============================================================================
// Edit
// =============================================================================

type editRequest struct {
	Dataset  station.Dataset `json:"dataset"`
	NodeID   int             `json:"node_id"`
	Fields   station.Fields  `json:"fields"`
	Category string          `json:"category"`
}

type editResponse struct {
	Dataset station.Dataset `json:"dataset"`
	Layout  layout.Result   `json:"layout"`
}

// POST /api/edit
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	opts, err := layoutOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req editRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	cat, err := station.ParseCategory(req.Category)
	if err != nil {
		s.writeError(w, r, editError(err))
		return
	}

	edited, err := req.Dataset.Edit(req.NodeID, req.Fields, cat)
	if err != nil {
		s.writeError(w, r, editError(err))
		return
	}
	res, err := s.runner.Layout(r.Context(), edited, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, editResponse{Dataset: graph.Normalize(edited), Layout: res})
}
