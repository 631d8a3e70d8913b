package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taxonscope/pkg/cache"
	"github.com/matzehuels/taxonscope/pkg/config"
	"github.com/matzehuels/taxonscope/pkg/session"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the session cache backend",
	}

	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cacheClearCommand())

	return cmd
}

func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured cache backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Cache
			printKeyValue("Backend", cfg.Backend)
			if cfg.Backend == config.BackendRedis {
				printKeyValue("Address", cfg.Redis.Addr)
				printKeyValue("Database", fmt.Sprint(cfg.Redis.DB))
				printKeyValue("Key TTL", cfg.TTL.String())
			}
			if cfg.Scope != "" {
				printKeyValue("Scope", cfg.Scope)
			} else {
				printKeyValue("Scope", "private per run")
			}
			return nil
		},
	}
}

// cacheClearCommand removes session keys left behind in Redis by processes
// that exited without closing their session.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete leftover session entries from the shared backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend != config.BackendRedis {
				printInfo("The %s backend keeps nothing between runs", c.Config.Cache.Backend)
				return nil
			}
			backend, err := c.Config.OpenCache(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			rc, ok := backend.(*cache.RedisCache)
			if !ok {
				return fmt.Errorf("backend %T cannot delete by prefix", backend)
			}
			n, err := rc.DeletePrefix(cmd.Context(), session.KeyPrefix)
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Redis: %s", c.Config.Cache.Redis.Addr)
			return nil
		},
	}
}
