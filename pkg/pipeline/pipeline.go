// Package pipeline runs the load → layout → render pipeline shared by the
// CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a dataset from a file or URL (or take one inline)
//  2. Layout: compute depths, ranks, coordinates and categories
//  3. Render: produce DOT, SVG, PNG or layout JSON
//
// Layouts are cached by dataset content hash and layout options, and
// artifacts by layout hash and format, so repeated requests for an unchanged
// dataset skip straight to the cached bytes.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "plant.json",
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := res.Artifacts["svg"]
//
// Stages can also run on their own:
//
//	ds, err := runner.Load(ctx, opts)
//	l, err := runner.Layout(ctx, ds, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stationmap/pkg/cache"
	"github.com/matzehuels/stationmap/pkg/errors"
	"github.com/matzehuels/stationmap/pkg/layout"
	"github.com/matzehuels/stationmap/pkg/station"
)

// =============================================================================
// Default Values
// =============================================================================

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// DefaultFormats are rendered when Options.Formats is empty.
var DefaultFormats = []string{FormatSVG}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// Engine names the Graphviz layout engine used for rendering. It is part of
// artifact cache keys.
const Engine = "neato"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run. It supports JSON
// for API requests.
type Options struct {
	// Load options. Dataset takes precedence over Source.
	Source  string           `json:"source,omitempty"`
	Dataset *station.Dataset `json:"dataset,omitempty"`

	// Layout options
	Strategy       string  `json:"strategy,omitempty"`
	LevelSpacing   float64 `json:"level_spacing,omitempty"`
	SiblingSpacing float64 `json:"sibling_spacing,omitempty"`
	NodeWidth      float64 `json:"node_width,omitempty"`
	NodeHeight     float64 `json:"node_height,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Dataset station.Dataset
	// DatasetHash is the content hash of the dataset, as used in cache keys.
	DatasetHash string
	Layout      layout.Result
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SourceHit bool // Whether a remote dataset came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, png, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Dataset == nil && o.Source == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source or dataset is required")
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// SetLayoutDefaults fills unset layout options from [layout.DefaultOptions].
func (o *Options) SetLayoutDefaults() {
	def := layout.DefaultOptions()
	if o.Strategy == "" {
		o.Strategy = string(def.Strategy)
	}
	if o.LevelSpacing <= 0 {
		o.LevelSpacing = def.LevelSpacing
	}
	if o.SiblingSpacing <= 0 {
		o.SiblingSpacing = def.SiblingSpacing
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = def.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = def.NodeHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if _, err := layout.ParseStrategy(o.Strategy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "layout options")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = append([]string{}, DefaultFormats...)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutOptions converts to engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Strategy:       layout.Strategy(o.Strategy),
		LevelSpacing:   o.LevelSpacing,
		SiblingSpacing: o.SiblingSpacing,
		NodeWidth:      o.NodeWidth,
		NodeHeight:     o.NodeHeight,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Strategy:       o.Strategy,
		LevelSpacing:   o.LevelSpacing,
		SiblingSpacing: o.SiblingSpacing,
		NodeWidth:      o.NodeWidth,
		NodeHeight:     o.NodeHeight,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	engine := Engine
	if o.Detailed {
		engine += "+detailed"
	}
	return cache.ArtifactKeyOpts{Format: format, Engine: engine}
}

func (o *Options) describe() string {
	if o.Dataset != nil {
		return "inline dataset"
	}
	return o.Source
}
