package occurrence

import (
	"context"

	"github.com/matzehuels/taxonscope/pkg/taxon"
)

// Occurrence is an admitted observation: it names a species and carries
// both coordinates.
type Occurrence struct {
	Key     int64   `json:"key"`
	Species string  `json:"species"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Record is an occurrence as reported by the service. Missing coordinates
// are nil, so a literal 0.0 can be told apart from an absent value.
type Record struct {
	Key     int64
	Species string
	Lat     *float64
	Lon     *float64
}

// Admit converts r to an Occurrence. It reports false when the species or
// either coordinate is missing.
func (r Record) Admit() (Occurrence, bool) {
	if r.Species == "" || r.Lat == nil || r.Lon == nil {
		return Occurrence{}, false
	}
	return Occurrence{Key: r.Key, Species: r.Species, Lat: *r.Lat, Lon: *r.Lon}, true
}

// Page is one page of occurrence search results.
type Page struct {
	Records      []Record
	EndOfRecords bool
}

// Query selects one page of occurrences of a taxon inside a region.
type Query struct {
	Taxon  taxon.ID
	Region Region
	Offset int
	Limit  int
}

// Source is the occurrence search service. Implementations only return
// records flagged as having coordinates and no geospatial issue.
type Source interface {
	Occurrences(ctx context.Context, q Query) (Page, error)
}
