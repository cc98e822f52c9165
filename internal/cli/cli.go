// Package cli implements the spicenet command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/schemtools/spicenet/pkg/buildinfo"
	"github.com/schemtools/spicenet/pkg/cache"
	"github.com/schemtools/spicenet/pkg/pipeline"
	"github.com/schemtools/spicenet/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "spicenet"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config
}

// New creates a new CLI instance with a default logger and the loaded
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: LoadConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "spicenet",
		Short:        "Spicenet turns schematics into SPICE netlists",
		Long:         `Spicenet is a CLI tool for netlisting hierarchical schematics: it resolves sub-circuit hierarchies from a document store, extracts electrical nets from device geometry, and renders ready-to-simulate SPICE decks.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.netlistCommand())
	root.AddCommand(c.netsCommand())
	root.AddCommand(c.devicesCommand())
	root.AddCommand(c.probesCommand())
	root.AddCommand(c.libraryCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newStore opens the document store: a local JSON file when file is set,
// otherwise the configured CouchDB or MongoDB backend.
func (c *CLI) newStore(ctx context.Context, file string) (store.Store, error) {
	if file != "" {
		return store.LoadFile(file)
	}
	return c.Config.OpenStore(ctx)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, file string, noCache bool) (*pipeline.Runner, error) {
	st, err := c.newStore(ctx, file)
	if err != nil {
		return nil, err
	}
	byteCache, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(st, byteCache, nil, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.Config.RedisURL != "" {
		return cache.NewRedisCache(c.Config.RedisURL)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/spicenet/).
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

// includeDir returns the default directory for downloaded include files.
func includeDir() string {
	dir, err := cacheDir()
	if err != nil {
		return "spice-includes"
	}
	return filepath.Join(dir, "includes")
}
