package cache

import "time"

// Default TTLs per kind of entry.
const (
	// SourceTTL bounds how long a fetched remote document is reused.
	SourceTTL = 10 * time.Minute
	// LayoutTTL applies to computed layouts and rendered artifacts, which
	// are pure functions of their keyed inputs.
	LayoutTTL = 7 * 24 * time.Hour
)

// LayoutKeyOpts lists every option that changes a computed layout.
type LayoutKeyOpts struct {
	Strategy       string  `json:"strategy"`
	LevelSpacing   float64 `json:"level_spacing"`
	SiblingSpacing float64 `json:"sibling_spacing"`
	NodeWidth      float64 `json:"node_width"`
	NodeHeight     float64 `json:"node_height"`
}

// ArtifactKeyOpts lists every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Engine string `json:"engine,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// SourceKey identifies a fetched document by URL.
	SourceKey(url string) string
	// LayoutKey identifies a layout by dataset content hash and options.
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered artifact by layout hash and format.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SourceKey returns "source:<url>".
func (DefaultKeyer) SourceKey(url string) string { return "source:" + url }

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", datasetHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
