package occurrence

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taxonscope/pkg/httputil"
	"github.com/matzehuels/taxonscope/pkg/observability"
	"github.com/matzehuels/taxonscope/pkg/taxon"
)

const (
	DefaultPageSize  = 300    // Default (and maximum) occurrence page size
	DefaultGlobalCap = 1000   // Default admitted-record cap per collection
	MaxOffset        = 100000 // Deepest offset+limit the service serves
)

// Options configures a Collector.
type Options struct {
	PageSize int             // Records per request (default and max: 300)
	Pacer    *httputil.Pacer // Spacing between requests (default: httputil.DefaultPace)
	Dedupe   bool            // Drop records whose key was already admitted
	Logger   *log.Logger     // Structured logger (default: discard)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.PageSize <= 0 || opts.PageSize > DefaultPageSize {
		opts.PageSize = DefaultPageSize
	}
	if opts.Pacer == nil {
		opts.Pacer = httputil.NewPacer(httputil.DefaultPace)
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return opts
}

// Collector gathers geolocated occurrences of a taxon region by region.
//
// Requests are issued one at a time and spaced by the pacer, which is shared
// by every Collect call on the same Collector.
type Collector struct {
	src  Source
	opts Options
}

// NewCollector creates a Collector reading from src.
func NewCollector(src Source, opts Options) *Collector {
	return &Collector{src: src, opts: opts.WithDefaults()}
}

// Collect pages through each region in order and returns the admitted
// occurrences of id, stopping as soon as globalCap records have been
// admitted (globalCap <= 0 means no cap).
//
// A region ends at a short, empty or final page, at a failed page, or at the
// service's offset ceiling. Page failures are logged, not returned; the only
// error is ctx.Err(), returned together with what was gathered so far.
func (c *Collector) Collect(ctx context.Context, id taxon.ID, regions []Region, globalCap int) ([]Occurrence, error) {
	start := time.Now()
	run := &collection{
		Collector: c,
		id:        id,
		limit:     globalCap,
	}
	if c.opts.Dedupe {
		run.seen = make(map[int64]struct{})
	}

	err := run.all(ctx, regions)
	observability.Collect().OnComplete(ctx, int64(id), len(run.acc), time.Since(start), err)
	c.opts.Logger.Debug("collection finished", "id", id, "admitted", len(run.acc), "err", err)
	return run.acc, err
}

type collection struct {
	*Collector
	id    taxon.ID
	limit int
	acc   []Occurrence
	seen  map[int64]struct{}
}

func (r *collection) full() bool {
	return r.limit > 0 && len(r.acc) >= r.limit
}

func (r *collection) all(ctx context.Context, regions []Region) error {
	for _, region := range regions {
		if r.full() {
			return nil
		}
		if err := r.region(ctx, region); err != nil {
			return err
		}
	}
	return nil
}

func (r *collection) region(ctx context.Context, region Region) error {
	for offset := 0; offset < MaxOffset; {
		size := min(r.opts.PageSize, MaxOffset-offset)
		if err := r.opts.Pacer.Wait(ctx); err != nil {
			return err
		}

		page, err := r.src.Occurrences(ctx, Query{Taxon: r.id, Region: region, Offset: offset, Limit: size})
		if err != nil {
			observability.Collect().OnPage(ctx, region.Name, offset, 0, 0, err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.opts.Logger.Warn("occurrence page failed", "region", region.Name, "offset", offset, "err", err)
			return nil
		}

		admitted := r.admit(page.Records)
		observability.Collect().OnPage(ctx, region.Name, offset, len(page.Records), admitted, nil)
		r.opts.Logger.Debug("occurrence page", "region", region.Name, "offset", offset,
			"fetched", len(page.Records), "admitted", admitted, "total", len(r.acc))

		if r.full() || len(page.Records) < size || page.EndOfRecords {
			return nil
		}
		offset += len(page.Records)
	}
	r.opts.Logger.Debug("offset ceiling reached", "region", region.Name)
	return nil
}

// admit appends the usable records of a page until the cap is reached and
// returns how many were appended.
func (r *collection) admit(records []Record) int {
	n := 0
	for _, rec := range records {
		if r.full() {
			break
		}
		occ, ok := rec.Admit()
		if !ok {
			continue
		}
		if r.seen != nil && occ.Key != 0 {
			if _, dup := r.seen[occ.Key]; dup {
				continue
			}
			r.seen[occ.Key] = struct{}{}
		}
		r.acc = append(r.acc, occ)
		n++
	}
	return n
}
