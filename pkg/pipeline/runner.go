package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taxonscope/pkg/errors"
	"github.com/matzehuels/taxonscope/pkg/occurrence"
	"github.com/matzehuels/taxonscope/pkg/render/heatmap"
	"github.com/matzehuels/taxonscope/pkg/richness"
	"github.com/matzehuels/taxonscope/pkg/taxon"
)

// Runner executes richness pipelines.
//
// The Runner holds no per-run state: its resolver memoizes through the
// session and its collector paces requests. Multiple goroutines may share a
// Runner; their page requests are serialized by the collector's pacer.
type Runner struct {
	Resolver  *taxon.Resolver
	Collector *occurrence.Collector
	Logger    *log.Logger
}

// NewRunner creates a runner. A nil logger uses log.Default().
func NewRunner(resolver *taxon.Resolver, collector *occurrence.Collector, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Resolver:  resolver,
		Collector: collector,
		Logger:    logger,
	}
}

// Execute runs resolve → collect → aggregate → export.
//
// An unresolvable name yields a TAXON_NOT_FOUND error. Collection failures
// never fail the run; they only shrink the result. Cancellation returns
// ctx.Err().
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Resolve
	start := time.Now()
	id, err := r.Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.TaxonID = id
	result.Stats.ResolveTime = time.Since(start)

	// Stage 2: Collect
	start = time.Now()
	occs, err := r.Collector.Collect(ctx, id, opts.Regions, opts.GlobalCap)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	result.Occurrences = occs
	result.Stats.CollectTime = time.Since(start)

	r.Logger.Info("collected occurrences",
		"taxon", opts.Name,
		"key", id,
		"occurrences", len(occs),
		"duration", result.Stats.CollectTime)

	// Stage 3: Aggregate
	start = time.Now()
	grid := opts.Grid()
	result.Bins = grid.Aggregate(occs)
	result.Triples = grid.ToTriples(result.Bins)
	result.Summary = richness.Summarize(occs, result.Bins)
	result.Stats.AggregateTime = time.Since(start)

	r.Logger.Info("aggregated richness",
		"cells", result.Summary.Cells,
		"species", result.Summary.Species,
		"max", result.Summary.MaxRichness)

	// Stage 4: Export
	start = time.Now()
	artifacts, err := Render(result.Triples, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)

	return result, nil
}

// Resolve maps the run's name and rank to a usage key.
func (r *Runner) Resolve(ctx context.Context, opts Options) (taxon.ID, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return 0, err
	}
	id, err := r.Resolver.Resolve(ctx, opts.Name, opts.rank)
	switch {
	case stderrors.Is(err, taxon.ErrNotFound):
		return 0, errors.Wrap(errors.ErrCodeTaxonNotFound, err, "no %s named %q", opts.rank, opts.Name)
	case err != nil:
		return 0, err
	}
	return id, nil
}

// Render exports triples in every requested format.
func Render(triples []richness.Triple, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		data, err := heatmap.Render(triples, f, heatmap.Options{Title: opts.Name + " species richness"})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		artifacts[f] = data
	}
	return artifacts, nil
}
