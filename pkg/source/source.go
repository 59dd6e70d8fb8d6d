package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stationmap/pkg/cache"
	"github.com/matzehuels/stationmap/pkg/cycles"
	"github.com/matzehuels/stationmap/pkg/errors"
	"github.com/matzehuels/stationmap/pkg/graph"
	"github.com/matzehuels/stationmap/pkg/httputil"
	"github.com/matzehuels/stationmap/pkg/observability"
	"github.com/matzehuels/stationmap/pkg/station"
)

// Defaults for remote fetches.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	// MaxDocumentSize bounds a fetched or read document.
	MaxDocumentSize = 32 << 20
)

// Document is a raw loaded document.
type Document struct {
	// Name is the path or URL path used to detect the encoding.
	Name string
	Data []byte
	// Cached reports whether a remote document came from the cache.
	Cached bool
}

// Loader reads documents from files and URLs.
type Loader struct {
	client   *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	attempts int
	delay    time.Duration
	logger   *log.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option { return func(l *Loader) { l.client = c } }

// WithCache caches remote documents for ttl.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(l *Loader) {
		l.cache = c
		if keyer != nil {
			l.keyer = keyer
		}
		l.ttl = ttl
	}
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(l *Loader) { l.attempts, l.delay = attempts, delay }
}

// WithLogger sets the logger for fetch diagnostics.
func WithLogger(logger *log.Logger) Option { return func(l *Loader) { l.logger = logger } }

// New creates a Loader. Without options it fetches uncached with the default
// timeout and retry policy.
func New(opts ...Option) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: DefaultTimeout},
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// =============================================================================
// Typed loaders
// =============================================================================

// Dataset loads and decodes a machine-map dataset.
func (l *Loader) Dataset(ctx context.Context, src string) (station.Dataset, Document, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, src)

	doc, err := l.Fetch(ctx, src)
	var ds station.Dataset
	if err == nil {
		ds, err = graph.DecodeDataset(doc.Data, doc.Name)
		if err != nil {
			err = fmt.Errorf("%s: %w", src, err)
		}
	}

	observability.Pipeline().OnLoadComplete(ctx, src, len(ds.Nodes), time.Since(start), err)
	if err != nil {
		return station.Dataset{}, Document{}, err
	}
	return ds, doc, nil
}

// Prediction loads a per-cycle prediction document.
func (l *Loader) Prediction(ctx context.Context, src string) (cycles.Prediction, error) {
	var p cycles.Prediction
	err := l.decodeJSON(ctx, src, &p)
	return p, err
}

// Changelog loads a model changelog document.
func (l *Loader) Changelog(ctx context.Context, src string) (*cycles.Changelog, error) {
	var c cycles.Changelog
	if err := l.decodeJSON(ctx, src, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// CycleData loads a raw cycle-signal document.
func (l *Loader) CycleData(ctx context.Context, src string) (cycles.CycleDataDoc, error) {
	var d cycles.CycleDataDoc
	err := l.decodeJSON(ctx, src, &d)
	return d, err
}

func (l *Loader) decodeJSON(ctx context.Context, src string, v any) error {
	doc, err := l.Fetch(ctx, src)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(doc.Data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", src)
	}
	return nil
}

// =============================================================================
// Raw fetch
// =============================================================================

// Fetch returns the raw bytes at src, which is a local path or an http(s)
// URL.
func (l *Loader) Fetch(ctx context.Context, src string) (Document, error) {
	if src == "" {
		return Document{}, errors.New(errors.ErrCodeInvalidInput, "no source given")
	}
	if errors.IsURL(src) {
		return l.fetchURL(ctx, src)
	}
	return readFile(src)
}

func readFile(p string) (Document, error) {
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", p)
		}
		return Document{}, fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	data, err := readLimited(f)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", p, err)
	}
	return Document{Name: p, Data: data}, nil
}

func (l *Loader) fetchURL(ctx context.Context, rawURL string) (Document, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return Document{}, err
	}
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}

	key := l.keyer.SourceKey(rawURL)
	if data, ok, err := l.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "source")
		l.logger.Debug("source cache hit", "url", rawURL)
		return Document{Name: name, Data: data, Cached: true}, nil
	} else if err != nil {
		l.logger.Warn("source cache read failed", "url", rawURL, "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, "source")

	var data []byte
	err := httputil.Retry(ctx, l.attempts, l.delay, func() error {
		var err error
		data, err = l.get(ctx, rawURL)
		if err != nil && httputil.IsRetryable(err) {
			l.logger.Debug("fetch failed, retrying", "url", rawURL, "err", err)
		}
		return err
	})
	if err != nil {
		return Document{}, err
	}

	if err := l.cache.Set(ctx, key, data, l.ttl); err != nil {
		l.logger.Warn("source cache write failed", "url", rawURL, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "source", len(data))
	}
	return Document{Name: name, Data: data}, nil
}

func (l *Loader) get(ctx context.Context, rawURL string) (data []byte, err error) {
	start := time.Now()
	status := 0
	observability.Fetch().OnFetchStart(ctx, rawURL)
	defer func() {
		observability.Fetch().OnFetchComplete(ctx, rawURL, status, len(data), time.Since(start), err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")

	resp, err := l.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", rawURL))
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if err := httputil.CheckResponse(resp); err != nil {
		return nil, err
	}
	data, err = readLimited(resp.Body)
	if errors.GetCode(err) != "" {
		return nil, err
	} else if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", rawURL))
	}
	return data, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDocumentSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document exceeds %d bytes", MaxDocumentSize)
	}
	return data, nil
}
