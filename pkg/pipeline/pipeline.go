// Package pipeline runs the richness pipeline shared by the CLI and the
// HTTP server.
//
// # Architecture
//
// A run has four stages:
//
//  1. Resolve: turn a name and rank into a GBIF usage key
//  2. Collect: gather geolocated occurrences region by region
//  3. Aggregate: bin occurrences and count distinct species per cell
//  4. Export: render the sorted triples as HTML, JSON or CSV
//
// Stages 1 and 2 go through the session's memo and the collector's pacer;
// stages 3 and 4 are pure.
//
// # Usage
//
//	runner := pipeline.NewRunner(resolver, collector, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Name:    "Felidae",
//	    Rank:    "FAMILY",
//	    Formats: []string{"html"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page := result.Artifacts["html"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taxonscope/pkg/errors"
	"github.com/matzehuels/taxonscope/pkg/occurrence"
	"github.com/matzehuels/taxonscope/pkg/render/heatmap"
	"github.com/matzehuels/taxonscope/pkg/richness"
	"github.com/matzehuels/taxonscope/pkg/taxon"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultRank is the rank richness queries resolve names at.
	DefaultRank = "FAMILY"

	// DefaultGlobalCap is the admitted-occurrence cap per run.
	DefaultGlobalCap = occurrence.DefaultGlobalCap

	// DefaultCellSize is the grid cell edge in degrees.
	DefaultCellSize = richness.DefaultCellSize
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. It supports JSON for API requests.
type Options struct {
	Name      string              `json:"name"`
	Rank      string              `json:"rank,omitempty"`
	Regions   []occurrence.Region `json:"regions,omitempty"`
	GlobalCap int                 `json:"cap,omitempty"`
	CellSize  float64             `json:"cell_size,omitempty"`
	Formats   []string            `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	rank      taxon.Rank
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// TaxonID is the resolved usage key.
	TaxonID taxon.ID

	// Occurrences are the admitted records, in collection order.
	Occurrences []occurrence.Occurrence

	// Bins maps grid cells to species richness.
	Bins map[richness.Bin]int

	// Triples are the heat-map points sorted by (lat, lon).
	Triples []richness.Triple

	// Summary describes the aggregation.
	Summary richness.Summary

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ResolveTime   time.Duration
	CollectTime   time.Duration
	AggregateTime time.Duration
	RenderTime    time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.ResolveTime + s.CollectTime + s.AggregateTime + s.RenderTime
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateTaxonName(o.Name); err != nil {
		return err
	}

	if o.Rank == "" {
		o.Rank = DefaultRank
	}
	rank, err := taxon.LookupRank(o.Rank)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRank, err, "invalid rank %q", o.Rank)
	}
	o.rank = rank

	if len(o.Regions) == 0 {
		o.Regions = occurrence.Continents
	}
	for _, r := range o.Regions {
		if err := r.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid region")
		}
	}

	if o.GlobalCap == 0 {
		o.GlobalCap = DefaultGlobalCap
	}
	if err := errors.ValidatePositive("cap", o.GlobalCap); err != nil {
		return err
	}
	if o.CellSize == 0 {
		o.CellSize = DefaultCellSize
	}
	if o.CellSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cell size must be positive, got %v", o.CellSize)
	}

	for _, f := range o.Formats {
		if err := heatmap.ValidateFormat(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid format %q", f)
		}
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Grid returns the grid the run aggregates on.
func (o *Options) Grid() richness.Grid {
	return richness.Grid{Size: o.CellSize}
}
