package observability

import (
	"context"
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of a Recorder's counters.
type Snapshot struct {
	Loads        int64            `json:"loads"`
	LoadErrors   int64            `json:"load_errors"`
	Layouts      int64            `json:"layouts"`
	LayoutErrors int64            `json:"layout_errors"`
	LayoutTime   time.Duration    `json:"layout_time_ns"`
	Renders      int64            `json:"renders"`
	RenderErrors int64            `json:"render_errors"`
	CacheHits    map[string]int64 `json:"cache_hits"`
	CacheMisses  map[string]int64 `json:"cache_misses"`
	Fetches      int64            `json:"fetches"`
	FetchErrors  int64            `json:"fetch_errors"`
	FetchedBytes int64            `json:"fetched_bytes"`
}

// Recorder counts events. It implements PipelineHooks, CacheHooks and
// FetchHooks and is safe for concurrent use.
type Recorder struct {
	mu sync.Mutex
	s  Snapshot
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{s: Snapshot{
		CacheHits:   map[string]int64{},
		CacheMisses: map[string]int64{},
	}}
}

// Snapshot copies the current counters.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.s
	s.CacheHits = copyCounts(r.s.CacheHits)
	s.CacheMisses = copyCounts(r.s.CacheMisses)
	return s
}

func (r *Recorder) update(fn func(s *Snapshot)) {
	r.mu.Lock()
	fn(&r.s)
	r.mu.Unlock()
}

func (r *Recorder) OnLoadStart(context.Context, string) {}

func (r *Recorder) OnLoadComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	r.update(func(s *Snapshot) {
		s.Loads++
		if err != nil {
			s.LoadErrors++
		}
	})
}

func (r *Recorder) OnLayoutStart(context.Context, string, int) {}

func (r *Recorder) OnLayoutComplete(_ context.Context, _ string, d time.Duration, err error) {
	r.update(func(s *Snapshot) {
		s.Layouts++
		s.LayoutTime += d
		if err != nil {
			s.LayoutErrors++
		}
	})
}

func (r *Recorder) OnRenderStart(context.Context, []string) {}

func (r *Recorder) OnRenderComplete(_ context.Context, _ []string, _ time.Duration, err error) {
	r.update(func(s *Snapshot) {
		s.Renders++
		if err != nil {
			s.RenderErrors++
		}
	})
}

func (r *Recorder) OnCacheHit(_ context.Context, keyType string) {
	r.update(func(s *Snapshot) { s.CacheHits[keyType]++ })
}

func (r *Recorder) OnCacheMiss(_ context.Context, keyType string) {
	r.update(func(s *Snapshot) { s.CacheMisses[keyType]++ })
}

func (r *Recorder) OnCacheSet(context.Context, string, int) {}

func (r *Recorder) OnFetchStart(context.Context, string) {}

func (r *Recorder) OnFetchComplete(_ context.Context, _ string, _, size int, _ time.Duration, err error) {
	r.update(func(s *Snapshot) {
		s.Fetches++
		s.FetchedBytes += int64(size)
		if err != nil {
			s.FetchErrors++
		}
	})
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var (
	_ PipelineHooks = (*Recorder)(nil)
	_ CacheHooks    = (*Recorder)(nil)
	_ FetchHooks    = (*Recorder)(nil)
)
