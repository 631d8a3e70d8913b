package cli

import (
	"context"
	"time"

	"github.com/matzehuels/taxonscope/pkg/cache"
	"github.com/matzehuels/taxonscope/pkg/config"
	"github.com/matzehuels/taxonscope/pkg/httputil"
	"github.com/matzehuels/taxonscope/pkg/occurrence"
	"github.com/matzehuels/taxonscope/pkg/pipeline"
	"github.com/matzehuels/taxonscope/pkg/session"
	gbifsrc "github.com/matzehuels/taxonscope/pkg/source/gbif"
	"github.com/matzehuels/taxonscope/pkg/taxon"
)

// closeTimeout bounds session cleanup after the command's context is gone.
const closeTimeout = 5 * time.Second

// app is the object graph one command invocation runs on: a session memo
// shared by the traverser and the richness runner.
type app struct {
	backend   cache.Cache
	session   *session.Session
	traverser *taxon.Traverser
	runner    *pipeline.Runner
}

// appOverrides carries command flags that take precedence over config.
type appOverrides struct {
	pageSize    int
	maxChildren int
	maxDepth    int
	mode        string
	occPageSize int
	pace        time.Duration
	dedupe      bool
}

// openApp connects the cache backend and wires the GBIF source into a
// traverser and a richness runner.
func (c *CLI) openApp(ctx context.Context, o appOverrides) (*app, error) {
	cfg := c.Config
	if err := applyOverrides(&cfg, o); err != nil {
		return nil, err
	}

	backend, err := cfg.OpenCache(ctx)
	if err != nil {
		return nil, err
	}
	sess := session.Open(backend, cfg.Cache.TTL, cfg.Cache.Scope)
	c.Logger.Debug("session opened", "id", sess.ID, "shared", sess.Shared, "backend", cfg.Cache.Backend)

	src := gbifsrc.New(cfg.GBIFOptions())
	trav := taxon.NewTraverser(src, sess.Memo(), taxon.Options{
		PageSize:    cfg.Traversal.PageSize,
		MaxChildren: cfg.Traversal.MaxChildren,
		MaxDepth:    cfg.Traversal.MaxDepth,
		MaxScanned:  cfg.Traversal.MaxScanned,
		Mode:        cfg.Mode(),
		Logger:      c.Logger,
	})
	collector := occurrence.NewCollector(src, occurrence.Options{
		PageSize: cfg.Occurrence.PageSize,
		Pacer:    httputil.NewPacer(cfg.Occurrence.Pace),
		Dedupe:   cfg.Occurrence.Dedupe,
		Logger:   c.Logger,
	})

	return &app{
		backend:   backend,
		session:   sess,
		traverser: trav,
		runner:    pipeline.NewRunner(trav.Resolver(), collector, c.Logger),
	}, nil
}

// Close clears the session and releases the backend.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	err := a.session.Close(ctx)
	if cerr := a.backend.Close(); err == nil {
		err = cerr
	}
	return err
}

func applyOverrides(cfg *config.Config, o appOverrides) error {
	if o.pageSize > 0 {
		cfg.Traversal.PageSize = o.pageSize
	}
	if o.maxChildren > 0 {
		cfg.Traversal.MaxChildren = o.maxChildren
	}
	if o.maxDepth > 0 {
		cfg.Traversal.MaxDepth = o.maxDepth
	}
	if o.mode != "" {
		cfg.Traversal.Mode = o.mode
	}
	if o.occPageSize > 0 {
		cfg.Occurrence.PageSize = o.occPageSize
	}
	if o.pace > 0 {
		cfg.Occurrence.Pace = o.pace
	}
	if o.dedupe {
		cfg.Occurrence.Dedupe = true
	}
	return cfg.Validate()
}
