package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/safetymap/pkg/buildinfo"
	"github.com/matzehuels/safetymap/pkg/cache"
	"github.com/matzehuels/safetymap/pkg/errors"
	"github.com/matzehuels/safetymap/pkg/layoutstore"
	"github.com/matzehuels/safetymap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "safetymap"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Populated by the root command's persistent flags and config file.
	configPath string
	config     *Config
	store      StoreConfig // flag overrides
	noCache    bool

	out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: &Config{},
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "safetymap charts which AI providers use which safety techniques",
		Long:         `safetymap builds the unified chart of safety categories, techniques and providers from an evidence dataset, lays it out, keeps the arrangement a user saved, and renders it or serves it to a browser.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig(cmd.Flags().Changed("config"))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", defaultConfigPath(), "config file (TOML)")
	pf.StringVar(&c.store.Backend, "store", "", "store backend: file (default), redis, mongo, none")
	pf.StringVar(&c.store.URL, "store-url", "", "redis URL or mongo URI (or $"+envRedisURL+" / $"+envMongoURI+")")
	pf.StringVar(&c.store.Workspace, "workspace", "", "prefix for every stored key")
	pf.BoolVar(&c.noCache, "no-cache", false, "do not cache graphs and artifacts (saved layouts still persist)")
	completeValues(root, "store", cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone)

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.settleCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies flag and environment
// overrides to its store section.
func (c *CLI) loadConfig(explicit bool) error {
	cfg, err := loadConfig(c.configPath, explicit)
	if err != nil {
		return err
	}
	if c.store.Backend != "" {
		cfg.Store.Backend = c.store.Backend
	}
	if c.store.URL != "" {
		cfg.Store.URL = c.store.URL
	}
	if c.store.Workspace != "" {
		cfg.Store.Workspace = c.store.Workspace
	}
	cfg.applyEnv(os.Getenv)
	c.config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "store", cfg.Store.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner opens the configured backend and returns a runner whose layout
// store lives on it. With --no-cache the runner's artifact cache is a
// NullCache but layouts are still saved. The returned func closes the
// backend.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, func(), error) {
	backend, err := c.openBackend(ctx)
	if err != nil {
		return nil, nil, err
	}

	keyer := cache.NewDefaultKeyer()
	if ws := c.config.Store.Workspace; ws != "" {
		if err := errors.ValidateStoreKey(ws); err != nil {
			backend.Close()
			return nil, nil, err
		}
		keyer = cache.NewScopedKeyer(keyer, "workspace:"+ws+":")
	}

	store := layoutstore.NewCacheStore(backend, keyer)
	artifacts := backend
	if c.noCache {
		artifacts = cache.NewNullCache()
	}
	runner := pipeline.NewRunner(artifacts, keyer, store, c.Logger)
	return runner, func() { backend.Close() }, nil
}

func (c *CLI) openBackend(ctx context.Context) (cache.Cache, error) {
	dir, err := cacheDir()
	if err != nil && c.config.Store.Dir == "" {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	opts := c.config.cacheOptions(dir)
	backend, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "open %s store", backendName(opts.Backend))
	}
	return backend, nil
}

func backendName(b string) string {
	if b == "" {
		return cache.BackendFile
	}
	return b
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/safetymap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns the config's pipeline options with the dataset from
// args (or the config) and the logger applied.
func (c *CLI) baseOptions(args []string) (pipeline.Options, error) {
	opts := c.config.options()
	if len(args) > 0 {
		opts.DatasetPath = args[0]
	}
	if opts.DatasetPath == "" {
		return opts, errors.New(errors.ErrCodeInvalidInput, "no dataset given (pass a file or URL, or set dataset in the config)")
	}
	opts.Logger = c.Logger
	return opts, nil
}

// splitList parses a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return splitList(s)
}
