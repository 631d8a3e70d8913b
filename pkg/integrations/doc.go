// Package integrations provides HTTP clients for the GBIF API.
//
// # Overview
//
// This package contains the shared low-level [Client]; service-specific
// clients live in subpackages:
//
//   - [gbif]: GBIF species match, children listing and occurrence search
//
// # Client Pattern
//
//	client := gbif.NewClient(gbif.Options{})
//	m, err := client.Match(ctx, "Felidae", "FAMILY")
//
// Clients handle:
//   - HTTP requests with bounded retry for transient failures
//   - Status mapping to [ErrNotFound] / [ErrNetwork] / [ErrMalformed]
//   - Request instrumentation through observability hooks
//
// They do not cache. Session memoization happens one layer up so that the
// "at most one request per key" guarantee covers retries too.
//
// [gbif]: github.com/matzehuels/taxonscope/pkg/integrations/gbif
package integrations
