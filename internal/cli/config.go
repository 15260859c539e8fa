package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/safetymap/pkg/cache"
	"github.com/matzehuels/safetymap/pkg/chart/layout"
	"github.com/matzehuels/safetymap/pkg/errors"
	"github.com/matzehuels/safetymap/pkg/pipeline"
)

// Environment variables read on top of the config file.
const (
	envRedisURL = "SAFETYMAP_REDIS_URL"
	envMongoURI = "SAFETYMAP_MONGO_URI"
)

// Config is the optional TOML config file:
//
//	dataset = "data/safety.json"
//
//	[layout]
//	name = "balanced"
//	width = 1400
//	row_spacing = 24
//
//	[colors.providers]
//	Acme = "#e11d48"
//
//	[store]
//	backend = "redis"
//	url = "redis://localhost:6379/0"
//	key = "unified-chart-layout"
//
//	[server]
//	addr = "127.0.0.1:8080"
type Config struct {
	Dataset string       `toml:"dataset"`
	Layout  LayoutConfig `toml:"layout"`
	Render  RenderConfig `toml:"render"`
	Colors  ColorConfig  `toml:"colors"`
	Store   StoreConfig  `toml:"store"`
	Server  ServerConfig `toml:"server"`
}

// LayoutConfig selects the engine and overrides layout constants.
type LayoutConfig struct {
	Name string `toml:"name"`
	layout.Config
}

// RenderConfig holds renderer defaults.
type RenderConfig struct {
	Renderer string  `toml:"renderer"`
	Title    string  `toml:"title"`
	PNGScale float64 `toml:"png_scale"`
}

// ColorConfig overrides the palettes.
type ColorConfig struct {
	Providers  map[string]string `toml:"providers"`
	Categories map[string]string `toml:"categories"`
}

// StoreConfig selects where layouts and cached artifacts live.
type StoreConfig struct {
	Backend   string `toml:"backend"`   // file (default), redis, mongo, none
	Dir       string `toml:"dir"`       // file backend directory
	URL       string `toml:"url"`       // redis URL or mongo URI
	Database  string `toml:"database"`  // mongo database
	Key       string `toml:"key"`       // name the layout is saved under
	Workspace string `toml:"workspace"` // key prefix shared by every entry
}

// ServerConfig configures "serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// configDir returns the config directory using XDG standard (~/.config/safetymap/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// defaultConfigPath returns config.toml inside configDir.
func defaultConfigPath() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// loadConfig reads the config at path. A missing file is only an error when
// the path was given explicitly. Unknown keys are rejected so typos do not
// pass silently.
func loadConfig(path string, explicit bool) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if os.IsNotExist(err) && !explicit {
		return &Config{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// applyEnv fills the store URL from the environment when the file leaves
// it empty.
func (c *Config) applyEnv(getenv func(string) string) {
	if c.Store.URL != "" {
		return
	}
	switch c.Store.Backend {
	case cache.BackendRedis:
		c.Store.URL = getenv(envRedisURL)
	case cache.BackendMongo:
		c.Store.URL = getenv(envMongoURI)
	}
}

// options returns the pipeline options the config describes. Flags are
// applied on top by the commands.
func (c *Config) options() pipeline.Options {
	return pipeline.Options{
		DatasetPath:    c.Dataset,
		ProviderColors: c.Colors.Providers,
		CategoryColors: c.Colors.Categories,
		Layout:         c.Layout.Name,
		Width:          c.Layout.Width,
		Height:         c.Layout.Height,
		Config:         c.Layout.Config,
		StoreKey:       c.Store.Key,
		Renderer:       c.Render.Renderer,
		Title:          c.Render.Title,
		PNGScale:       c.Render.PNGScale,
	}
}

// cacheOptions returns the backend options. dir is used when the config
// names no directory for the file backend.
func (c *Config) cacheOptions(dir string) cache.Options {
	opts := cache.Options{
		Backend:  c.Store.Backend,
		Dir:      c.Store.Dir,
		URL:      c.Store.URL,
		Database: c.Store.Database,
	}
	if opts.Dir == "" {
		opts.Dir = dir
	}
	return opts
}
