package cli

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ebiiii/lineal/internal/config"
	"github.com/ebiiii/lineal/pkg/buildinfo"
	"github.com/ebiiii/lineal/pkg/cache"
	"github.com/ebiiii/lineal/pkg/pipeline"
	"github.com/ebiiii/lineal/pkg/source"
	"github.com/ebiiii/lineal/pkg/source/local"
	"github.com/ebiiii/lineal/pkg/source/mongostore"
	"github.com/ebiiii/lineal/pkg/source/remote"
)

// appName is the application name used for directories and display.
const appName = "lineal"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config
}

// New creates a new CLI instance with a default logger and resolved
// configuration. Config errors surface on stderr but don't prevent
// startup; the built-in defaults apply instead.
func New(w io.Writer, level log.Level) *CLI {
	logger := newLogger(w, level)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("config unusable, using defaults", "err", err)
		d := config.Defaults()
		cfg = &d
	}

	return &CLI{Logger: logger, Config: cfg}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Lineal renders data lineage graphs as text diagrams",
		Long:         `Lineal is a CLI tool for rendering data lineage graphs as column-based text diagrams, tracing how files derive from one another through workflow executions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.showCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// sourceFlags selects where graphs are loaded from. Exactly one of the
// remote/mongo backends applies; a plain file path uses the local loader.
type sourceFlags struct {
	remote  string
	mongo   string
	noCache bool
}

func (f *sourceFlags) register(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&f.remote, "remote", cfg.Remote.URL, "knowledge-graph service base URL")
	cmd.Flags().StringVar(&f.mongo, "mongo", cfg.Mongo.URI, "MongoDB connection URI")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching of remote documents")
}

// newSource resolves the graph source for a command invocation.
// The returned closer releases backend connections; it may be nil.
func (c *CLI) newSource(ctx context.Context, f sourceFlags) (source.Source, func(), error) {
	if f.mongo != "" {
		store, err := mongostore.NewStore(ctx, mongostore.Config{
			URI:        f.mongo,
			Database:   c.Config.Mongo.Database,
			Collection: c.Config.Mongo.Collection,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close(context.Background()) }, nil
	}

	if f.remote != "" {
		cch := c.newCache(ctx, f.noCache)
		client, err := remote.NewClient(f.remote,
			remote.WithCache(cch, c.Config.CacheTTL),
			remote.WithHTTPClient(c.httpClient()),
		)
		if err != nil {
			_ = cch.Close()
			return nil, nil, err
		}
		return client, func() { _ = cch.Close() }, nil
	}

	return local.New(), nil, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f sourceFlags) (*pipeline.Runner, func(), error) {
	src, closer, err := c.newSource(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return pipeline.NewRunner(src, c.Logger), closer, nil
}

// newCache picks the cache backend: Redis when configured, the file
// cache otherwise, and the null cache when caching is off or the
// backend can't be reached.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	if c.Config.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if err == nil {
			return rc
		}
		c.Logger.Warn("redis unavailable, falling back to file cache", "err", err)
	}
	dir := c.Config.CacheDir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

// httpClient builds the HTTP client for remote sources, honoring the
// configured request timeout.
func (c *CLI) httpClient() *http.Client {
	return &http.Client{Timeout: c.Config.Remote.Timeout}
}

// renderOptions builds pipeline options from config defaults.
func (c *CLI) renderOptions() pipeline.Options {
	opts := pipeline.Defaults()
	opts.Compact = c.Config.Render.Compact
	opts.Separators = c.Config.Render.Separators
	return opts
}

// cacheDir returns the cache directory using the XDG convention
// (~/.cache/lineal/).
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
