// Package httputil provides request-policy helpers shared by the GBIF clients.
//
// # Overview
//
//   - [Retry] / [Policy]: bounded retry with exponential backoff
//   - [Pacer]: fixed spacing between consecutive requests
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// A not-found answer or an empty page is a normal terminal signal and is
// never retried:
//
//	err := httputil.DefaultPolicy.Do(ctx, func() error {
//	    return client.Get(ctx, url, &page)
//	})
//
// # Pacing
//
// GBIF's occurrence search is rate limited. A [Pacer] enforces a fixed delay
// between page requests; collectors call [Pacer.Wait] before every request:
//
//	p := httputil.NewPacer(httputil.DefaultPace)
//	for {
//	    if err := p.Wait(ctx); err != nil {
//	        return err
//	    }
//	    // issue request
//	}
//
// # Configuration
//
// Default settings:
//
//   - Max attempts: 3
//   - Base backoff: 1 second
//   - Pace: 1 second
package httputil
