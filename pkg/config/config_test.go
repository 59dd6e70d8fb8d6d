package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/stationmap/pkg/cache"
	"github.com/matzehuels/stationmap/pkg/errors"
	"github.com/matzehuels/stationmap/pkg/layout"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if got := cfg.LayoutOptions(); got != layout.DefaultOptions() {
		t.Errorf("LayoutOptions() = %+v, want engine defaults", got)
	}
}

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode([]byte(`
[layout]
strategy = "kahn"
level_spacing = 120

[cache]
backend = "redis"
namespace = "plant-a"
source_ttl = "90s"

[cache.redis]
addr = "redis:6379"
db = 2

[http]
timeout = "3s"
`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if cfg.Layout.Strategy != "kahn" || cfg.Layout.LevelSpacing != 120 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.SiblingSpacing != layout.DefaultSiblingSpacing {
		t.Errorf("unset sibling_spacing = %v, want default", cfg.Layout.SiblingSpacing)
	}
	if cfg.Cache.SourceTTL.Duration != 90*time.Second {
		t.Errorf("source_ttl = %v", cfg.Cache.SourceTTL)
	}
	if cfg.HTTP.Timeout.Duration != 3*time.Second || cfg.HTTP.Retries != 3 {
		t.Errorf("http = %+v", cfg.HTTP)
	}

	co := cfg.CacheOptions()
	if co.Backend != cache.BackendRedis || co.RedisAddr != "redis:6379" || co.RedisDB != 2 {
		t.Errorf("CacheOptions() = %+v", co)
	}
	if key := cfg.Keyer().SourceKey("u"); key != "plant-a:source:u" {
		t.Errorf("SourceKey = %q", key)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"syntax", `[layout`, ""},
		{"unknown key", "[layout]\nstrategy = \"kahn\"\nspacing = 3\n", "layout.spacing"},
		{"bad strategy", "[layout]\nstrategy = \"spiral\"\n", "layout.strategy"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", "cache.backend"},
		{"bad duration", "[http]\ntimeout = \"soon\"\n", ""},
		{"zero timeout", "[http]\ntimeout = \"0s\"\n", "http.timeout"},
		{"zero retries", "[http]\nretries = 0\n", "http.retries"},
		{"bad data url", "[server]\ndata_url = \"plant/\"\n", "server.data_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadDefaultPathAbsent(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("[cache]\nbackend = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}
