package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stationmap/pkg/cycles"
	"github.com/matzehuels/stationmap/pkg/errors"
)

type scatterRequest struct {
	Prediction cycles.Prediction `json:"prediction"`
	Changelog  *cycles.Changelog `json:"changelog"`
	Tool       string            `json:"tool"`
}

type scatterResponse struct {
	cycles.Chart
	// Tools lists every tool with readings, for the tool picker.
	Tools []string `json:"tools"`
}

type cycleRequest struct {
	CycleData cycles.CycleDataDoc `json:"cycle_data"`
	Ideal     []float64           `json:"ideal"`
}

// POST /api/scatter
func (s *Server) handleScatter(w http.ResponseWriter, r *http.Request) {
	var req scatterRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := scatter(req.Prediction, req.Changelog, req.Tool)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// POST /api/cycle?cycle=ID
func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("cycle")
	if id == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "cycle is required"))
		return
	}
	var req cycleRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	cmp, err := compare(req.CycleData, id, req.Ideal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cmp)
}

// GET /api/machines/{machine}/scatter?tool=T
func (s *Server) handleMachineScatter(w http.ResponseWriter, r *http.Request) {
	if s.paths == nil {
		s.writeError(w, r, errNoDataURL())
		return
	}
	machine := chi.URLParam(r, "machine")

	var (
		prediction cycles.Prediction
		changelog  *cycles.Changelog
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		prediction, err = s.runner.Loader.Prediction(ctx, s.paths.Prediction(machine))
		return err
	})
	g.Go(func() (err error) {
		changelog, err = s.runner.Loader.Changelog(ctx, s.paths.Changelog(machine))
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := scatter(prediction, changelog, r.URL.Query().Get("tool"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GET /api/machines/{machine}/cycles/{cycle}?tool=T&variant=V
//
// The ideal signal is the tool's learned average from the changelog.
func (s *Server) handleMachineCycle(w http.ResponseWriter, r *http.Request) {
	if s.paths == nil {
		s.writeError(w, r, errNoDataURL())
		return
	}
	machine, id := chi.URLParam(r, "machine"), chi.URLParam(r, "cycle")
	tool := r.URL.Query().Get("tool")
	if tool == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "tool is required"))
		return
	}
	variant := r.URL.Query().Get("variant")
	if variant == "" {
		variant = defaultVariant
	}
	if err := errors.ValidateToolName(variant); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, ideal, err := s.fetchCycle(r.Context(), machine, variant, tool)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cmp, err := compare(doc, id, ideal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cmp)
}

// defaultVariant is the cycle-data export used when none is requested.
const defaultVariant = "green"

func (s *Server) fetchCycle(ctx context.Context, machine, variant, tool string) (cycles.CycleDataDoc, []float64, error) {
	var (
		doc       cycles.CycleDataDoc
		changelog *cycles.Changelog
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		doc, err = s.runner.Loader.CycleData(ctx, s.paths.CycleData(machine, variant))
		return err
	})
	g.Go(func() (err error) {
		changelog, err = s.runner.Loader.Changelog(ctx, s.paths.Changelog(machine))
		return err
	})
	if err := g.Wait(); err != nil {
		return cycles.CycleDataDoc{}, nil, err
	}
	series := cycles.FilterByTool(cycles.Prediction{}, changelog, tool)
	return doc, series.IdealSignal, nil
}

func scatter(prediction cycles.Prediction, changelog *cycles.Changelog, tool string) (scatterResponse, error) {
	if tool == "" {
		return scatterResponse{}, errors.New(errors.ErrCodeInvalidInput, "tool is required")
	}
	if err := errors.ValidateToolName(tool); err != nil {
		return scatterResponse{}, err
	}
	return scatterResponse{
		Chart: cycles.BuildChart(prediction, changelog, tool),
		Tools: cycles.Tools(prediction),
	}, nil
}

func compare(doc cycles.CycleDataDoc, id string, ideal []float64) (cycles.Comparison, error) {
	if !cycles.HasCycle(doc, id) {
		return cycles.Comparison{}, errors.New(errors.ErrCodeCycleNotFound, "cycle %q not found", id)
	}
	return cycles.Compare(doc, id, ideal), nil
}

func errNoDataURL() error {
	return errors.New(errors.ErrCodeUnsupported, "no data root configured (set server.data_url)")
}
