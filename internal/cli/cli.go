// Package cli implements the taxonscope command-line interface.
//
// # Commands
//
//   - tree: resolve a name and eagerly build its subtree (text, JSON, DOT, SVG)
//   - browse: interactive lazy tree of the configured roots
//   - richness: collect occurrences and export a species-richness heat map
//   - serve: HTTP API and heat-map pages, with Prometheus metrics
//   - cache: inspect or clear the shared session backend
//
// # Configuration
//
// Settings come from the TOML file named by --config (default
// $XDG_CONFIG_HOME/taxonscope/config.toml), then environment variables, then
// command flags. See package config.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/taxonscope/pkg/buildinfo"
	"github.com/matzehuels/taxonscope/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "taxonscope"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	scope      string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Taxonscope browses the GBIF taxonomy and maps species richness",
		Long: `Taxonscope browses the GBIF backbone taxonomy as a lazily expanded tree and
maps the species richness of any taxon from GBIF occurrence records.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/taxonscope/config.toml)")
	root.PersistentFlags().StringVar(&c.scope, "session", "", "shared cache scope; runs with the same scope reuse lookups from Redis")

	root.AddCommand(c.treeCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.richnessCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file, then environment overrides, then
// --session. A missing file leaves the defaults in place.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.scope != "" {
		cfg.Cache.Scope = c.scope
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "config", cfg)
	return nil
}
