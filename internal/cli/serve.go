package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taxonscope/internal/metrics"
	"github.com/matzehuels/taxonscope/internal/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
		o         appOverrides
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the taxonomy API and heat-map pages over HTTP",
		Long: `Serve the taxonomy API and heat-map pages over HTTP.

  GET /query?family=<name>           heat-map page for a family
  GET /api/taxa/roots                configured browse roots
  GET /api/taxa/match?name=&rank=    usage key for a name
  GET /api/taxa/{id}/children        one level of children (?rank=, ?limit=)
  GET /api/richness?name=&rank=      richness triples (?format=json|csv|html, ?cap=)
  GET /metrics                       Prometheus metrics

All requests share one session, so repeated expansions and lookups are
served from memory (or from Redis, with the redis cache backend).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, !noMetrics, o)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config: :8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().StringVarP(&o.mode, "mode", "m", "", "rank filter for children: strict, permissive, off")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, withMetrics bool, o appOverrides) error {
	a, err := c.openApp(ctx, o)
	if err != nil {
		return err
	}
	defer a.Close()

	var m *metrics.Metrics
	if withMetrics {
		m = metrics.New()
		m.Install()
	}

	srv := server.New(server.Config{
		Traverser: a.traverser,
		Runner:    a.runner,
		Roots:     c.Config.Roots,
		Metrics:   m,
		Logger:    c.Logger,
	})
	printInfo("Listening on %s", addr)
	return srv.ListenAndServe(ctx, addr)
}
