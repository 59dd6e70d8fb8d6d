// Package source loads datasets and cycle documents from local files or
// http(s) URLs.
//
// Remote documents are fetched with retry (5xx, 429 and transport errors
// back off and try again) and may be cached, keyed by URL, for a short TTL:
//
//	l := source.New(
//	    source.WithCache(c, cache.NewDefaultKeyer(), cache.SourceTTL),
//	    source.WithLogger(logger),
//	)
//	ds, doc, err := l.Dataset(ctx, "https://example.com/plant.json")
//
// Local paths are read as-is and never cached.
package source
