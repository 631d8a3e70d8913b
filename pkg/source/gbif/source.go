// Package gbif adapts the GBIF API client to taxon.Source and
// occurrence.Source.
package gbif

import (
	"context"
	"errors"

	"github.com/matzehuels/taxonscope/pkg/integrations"
	api "github.com/matzehuels/taxonscope/pkg/integrations/gbif"
	"github.com/matzehuels/taxonscope/pkg/occurrence"
	"github.com/matzehuels/taxonscope/pkg/taxon"
)

// Source serves taxonomy and occurrence data from GBIF.
type Source struct{ *api.Client }

var (
	_ taxon.Source      = Source{}
	_ occurrence.Source = Source{}
)

// NewSource wraps client.
func NewSource(client *api.Client) Source { return Source{client} }

// New creates a Source with a fresh client configured by opts.
func New(opts api.Options) Source { return Source{api.NewClient(opts)} }

// Match resolves name at rank. GBIF's "no match" becomes taxon.ErrNotFound.
func (s Source) Match(ctx context.Context, name string, rank taxon.Rank) (taxon.ID, error) {
	param := ""
	if rank.Valid() {
		param = rank.String()
	}
	m, err := s.Client.Match(ctx, name, param)
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return 0, taxon.ErrNotFound
		}
		return 0, err
	}
	return taxon.ID(m.UsageKey), nil
}

// Children fetches one page of direct children of id.
func (s Source) Children(ctx context.Context, id taxon.ID, offset, limit int) (taxon.Page, error) {
	p, err := s.Client.Children(ctx, int64(id), offset, limit)
	if err != nil {
		return taxon.Page{}, err
	}
	page := taxon.Page{
		Records:      make([]taxon.Record, 0, len(p.Results)),
		EndOfRecords: p.EndOfRecords,
	}
	for _, u := range p.Results {
		page.Records = append(page.Records, taxon.Record{
			ID:             taxon.ID(u.Key),
			CanonicalName:  u.CanonicalName,
			ScientificName: u.ScientificName,
			Rank:           taxon.ParseRank(u.Rank),
			NumDescendants: u.NumDescendants,
		})
	}
	return page, nil
}

// Occurrences fetches one page of geolocated occurrences.
func (s Source) Occurrences(ctx context.Context, q occurrence.Query) (occurrence.Page, error) {
	p, err := s.Client.Occurrences(ctx, api.OccurrenceQuery{
		TaxonKey: int64(q.Taxon),
		LatMin:   q.Region.LatMin,
		LatMax:   q.Region.LatMax,
		LonMin:   q.Region.LonMin,
		LonMax:   q.Region.LonMax,
		Offset:   q.Offset,
		Limit:    q.Limit,
	})
	if err != nil {
		return occurrence.Page{}, err
	}
	page := occurrence.Page{
		Records:      make([]occurrence.Record, 0, len(p.Results)),
		EndOfRecords: p.EndOfRecords,
	}
	for _, o := range p.Results {
		page.Records = append(page.Records, occurrence.Record{
			Key:     o.Key,
			Species: o.Species,
			Lat:     o.DecimalLatitude,
			Lon:     o.DecimalLongitude,
		})
	}
	return page, nil
}
