// Package gbif provides an HTTP client for the GBIF v1 API.
//
// # Overview
//
// This package talks to the Global Biodiversity Information Facility
// (https://api.gbif.org/v1). It covers the three endpoints taxonscope needs:
//
//   - /species/match: resolve a name (optionally at a rank) to a usage key
//   - /species/{key}/children: page through the direct children of a taxon
//   - /occurrence/search: page through geolocated occurrence records
//
// # Usage
//
//	client := gbif.NewClient(gbif.Options{})
//
//	m, err := client.Match(ctx, "Felidae", "FAMILY")
//	if errors.Is(err, integrations.ErrNotFound) {
//	    // no usable match
//	}
//
//	page, err := client.Children(ctx, m.UsageKey, 0, 20)
//	for _, c := range page.Results {
//	    fmt.Println(c.CanonicalName, c.Rank)
//	}
//
// # Paging
//
// Both paged endpoints return offset, limit and endOfRecords. The client
// returns pages verbatim; stopping rules live with the callers
// (taxon.Paginator and occurrence.Collector). The occurrence search caps
// limit at [MaxOccurrenceLimit] and offset+limit at [MaxOccurrenceOffset].
//
// # Rate limits
//
// GBIF asks bulk users to space out occurrence-search requests. The client
// does not pace itself; occurrence.Collector owns the pacing contract.
package gbif
