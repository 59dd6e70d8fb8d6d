// Package cache stores computed layouts, rendered artifacts and fetched
// documents behind a small byte-oriented interface.
//
// Three backends are provided:
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for multiple API instances
//
// Keys are built by a [Keyer] so that every input that influences a cached
// value (dataset content, spacing, strategy, output format) is part of the
// key.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Cache is a byte store with per-entry TTL. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// ErrUnknownBackend is returned by [Open] for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Config selects and configures a backend.
type Config struct {
	Backend string

	// Dir is the FileCache directory.
	Dir string

	// Redis connection settings.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// RedisPrefix namespaces every key written to Redis.
	RedisPrefix string
}

// Open creates the backend described by cfg. An empty backend selects the
// file cache.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case BackendFile, "":
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q (must be one of: none, file, redis)", ErrUnknownBackend, cfg.Backend)
}
