// Package config loads stationmap's TOML configuration file.
//
// The file is optional. Every field has a default, and CLI flags override
// whatever the file sets. A minimal file:
//
//	[layout]
//	strategy = "kahn"
//	level_spacing = 150
//
//	[cache]
//	backend = "redis"
//	source_ttl = "5m"
//
//	[cache.redis]
//	addr = "cache.internal:6379"
//
//	[server]
//	addr = ":9090"
//	data_url = "https://plant.example.com/"
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stationmap/pkg/cache"
	"github.com/matzehuels/stationmap/pkg/errors"
	"github.com/matzehuels/stationmap/pkg/layout"
)

// FileName is the configuration file name inside the config directory.
const FileName = "config.toml"

// Config is the decoded configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	HTTP   HTTPConfig   `toml:"http"`
}

// LayoutConfig holds engine defaults.
type LayoutConfig struct {
	Strategy       string  `toml:"strategy"`
	LevelSpacing   float64 `toml:"level_spacing"`
	SiblingSpacing float64 `toml:"sibling_spacing"`
	NodeWidth      float64 `toml:"node_width"`
	NodeHeight     float64 `toml:"node_height"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	// Namespace prefixes every cache key, so several deployments can share
	// one Redis.
	Namespace string      `toml:"namespace"`
	SourceTTL Duration    `toml:"source_ttl"`
	Redis     RedisConfig `toml:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ServerConfig configures `stationmap serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// DataURL is the dashboard data root that machine maps and per-machine
	// cycle documents are fetched from.
	DataURL string `toml:"data_url"`
	// Source overrides the machine map served by GET /api/layout when the
	// request names none.
	Source string `toml:"source"`
}

// HTTPConfig configures remote fetches.
type HTTPConfig struct {
	Timeout Duration `toml:"timeout"`
	Retries int      `toml:"retries"`
}

// Duration is a time.Duration written as a Go duration string ("10s").
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the configuration used when no file exists.
func Default() Config {
	lo := layout.DefaultOptions()
	return Config{
		Layout: LayoutConfig{
			Strategy:       string(lo.Strategy),
			LevelSpacing:   lo.LevelSpacing,
			SiblingSpacing: lo.SiblingSpacing,
			NodeWidth:      lo.NodeWidth,
			NodeHeight:     lo.NodeHeight,
		},
		Cache: CacheConfig{
			Backend:   cache.BackendFile,
			SourceTTL: Duration{cache.SourceTTL},
			Redis:     RedisConfig{Addr: "localhost:6379"},
		},
		Server: ServerConfig{Addr: ":8080"},
		HTTP: HTTPConfig{
			Timeout: Duration{10 * time.Second},
			Retries: 3,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/stationmap/config.toml, or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "stationmap", FileName), nil
}

// Load reads the file at path over the defaults. An empty path reads
// [DefaultPath] and tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}

	cfg, err := Decode(data)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	return cfg, nil
}

// Decode parses TOML over the defaults and validates the result. Unknown
// keys are rejected so typos do not silently fall back to defaults.
func Decode(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	if _, err := layout.ParseStrategy(c.Layout.Strategy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "layout.strategy")
	}
	if !slices.Contains([]string{cache.BackendNone, cache.BackendFile, cache.BackendRedis}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend: %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	if c.Cache.SourceTTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.source_ttl must not be negative")
	}
	if c.HTTP.Timeout.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "http.timeout must be positive")
	}
	if c.Server.DataURL != "" {
		if err := errors.ValidateURL(c.Server.DataURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "server.data_url")
		}
	}
	if c.HTTP.Retries < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "http.retries must be at least 1")
	}
	return nil
}

// LayoutOptions returns the engine options.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		Strategy:       layout.Strategy(c.Layout.Strategy),
		LevelSpacing:   c.Layout.LevelSpacing,
		SiblingSpacing: c.Layout.SiblingSpacing,
		NodeWidth:      c.Layout.NodeWidth,
		NodeHeight:     c.Layout.NodeHeight,
	}
}

// CacheOptions returns the settings for [cache.Open].
func (c Config) CacheOptions() cache.Config {
	return cache.Config{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		RedisAddr:     c.Cache.Redis.Addr,
		RedisPassword: c.Cache.Redis.Password,
		RedisDB:       c.Cache.Redis.DB,
	}
}

// Keyer returns the cache keyer, scoped to the namespace when one is set.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Namespace == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Namespace+":")
}
