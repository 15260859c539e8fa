package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/safetymap/pkg/cache"
	"github.com/matzehuels/safetymap/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
dataset = "data/safety.json"

[layout]
name = "force"
width = 1400
row_spacing = 30
max_ticks = 200

[render]
renderer = "graphviz"
title = "Safety techniques"

[colors.providers]
Acme = "#e11d48"

[store]
backend = "redis"
key = "team-a"

[server]
addr = ":9090"
`)
	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	opts := cfg.options()
	if opts.DatasetPath != "data/safety.json" || opts.Layout != "force" || opts.Width != 1400 {
		t.Errorf("options = %+v", opts)
	}
	if opts.Config.RowSpacing != 30 || opts.Config.MaxTicks != 200 {
		t.Errorf("layout constants = %+v", opts.Config)
	}
	if opts.Renderer != "graphviz" || opts.Title != "Safety techniques" {
		t.Errorf("render options = %q %q", opts.Renderer, opts.Title)
	}
	if opts.ProviderColors["Acme"] != "#e11d48" {
		t.Errorf("provider colors = %v", opts.ProviderColors)
	}
	if opts.StoreKey != "team-a" || cfg.Server.Addr != ":9090" {
		t.Errorf("store key %q, addr %q", opts.StoreKey, cfg.Server.Addr)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := loadConfig(missing, false)
	if err != nil || cfg == nil {
		t.Fatalf("implicit missing config = %v, %v; want empty config", cfg, err)
	}
	if _, err := loadConfig(missing, true); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("explicit missing config = %v, want INVALID_INPUT", err)
	}
	if cfg, err := loadConfig("", false); err != nil || cfg == nil {
		t.Errorf("empty path = %v, %v", cfg, err)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"top level", "datset = \"x.json\"\n"},
		{"nested", "[layout]\nrow_spaceing = 3\n"},
		{"malformed", "[layout\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(writeConfig(t, tt.body), true); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("loadConfig = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		envRedisURL: "redis://cache:6379/1",
		envMongoURI: "mongodb://db:27017",
	}
	getenv := func(k string) string { return env[k] }

	tests := []struct {
		backend string
		url     string
		want    string
	}{
		{cache.BackendRedis, "", "redis://cache:6379/1"},
		{cache.BackendMongo, "", "mongodb://db:27017"},
		{cache.BackendRedis, "redis://explicit", "redis://explicit"},
		{cache.BackendFile, "", ""},
	}
	for _, tt := range tests {
		cfg := &Config{Store: StoreConfig{Backend: tt.backend, URL: tt.url}}
		cfg.applyEnv(getenv)
		if cfg.Store.URL != tt.want {
			t.Errorf("applyEnv(%s, %q) url = %q, want %q", tt.backend, tt.url, cfg.Store.URL, tt.want)
		}
	}
}

func TestCacheOptions(t *testing.T) {
	cfg := &Config{}
	if got := cfg.cacheOptions("/default"); got.Dir != "/default" {
		t.Errorf("dir = %q, want /default", got.Dir)
	}
	cfg.Store.Dir = "/custom"
	if got := cfg.cacheOptions("/default"); got.Dir != "/custom" {
		t.Errorf("dir = %q, want /custom", got.Dir)
	}
}
