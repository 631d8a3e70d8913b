// Package occurrence collects geolocated occurrence records of a taxon.
//
// A [Collector] pages through the occurrence search of each [Region] in
// turn (by default the six [Continents]) and keeps only records that name a
// species and carry both coordinates. Collection stops for good once the
// global cap is reached, truncating the current page if needed.
//
// # Pacing
//
// Consecutive page requests are spaced by an [httputil.Pacer] (one second by
// default). Pacing is not optional: a zero interval has to be requested
// explicitly with [httputil.WithoutPacing].
//
// # Example
//
//	c := occurrence.NewCollector(gbif.NewSource(client), occurrence.Options{})
//	occs, err := c.Collect(ctx, id, occurrence.Continents, 1000)
//
// [httputil.Pacer]: github.com/matzehuels/taxonscope/pkg/httputil.Pacer
// [httputil.WithoutPacing]: github.com/matzehuels/taxonscope/pkg/httputil.WithoutPacing
package occurrence
