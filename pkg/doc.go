// Package pkg provides the core libraries for taxonscope.
//
// # Overview
//
// Taxonscope browses the GBIF backbone taxonomy as a lazily expanded tree
// and maps the species richness of a taxon from GBIF occurrence records.
// The pkg directory is organized into four areas:
//
//  1. Domain: [taxon] (ranks, resolution, paging, traversal), [occurrence]
//     (regions, paced collection) and [richness] (grid binning, triples)
//  2. Infrastructure: [cache] (session memo, Redis), [session], [httputil]
//     (retry, pacing), [config], [errors], [observability]
//  3. Integrations: [integrations/gbif] (wire client) and [source/gbif]
//     (adapter onto the domain interfaces)
//  4. Output: [pipeline] (resolve → collect → aggregate → export) and
//     [render] (tree and heat-map writers)
//
// # Architecture
//
// Browsing:
//
//	name, rank
//	     ↓
//	[taxon.Resolver] (memoized per name and rank)
//	     ↓
//	[taxon.Traverser] → [taxon.Paginator] (memoized per page)
//	     ↓
//	[taxon.Node] tree → [render/treeviz]
//
// Richness:
//
//	name, rank → usage key
//	     ↓
//	[occurrence.Collector] (one paced request at a time, capped)
//	     ↓
//	[richness.Grid] bins → sorted triples → [render/heatmap]
//
// # Quick Start
//
//	src := gbif.New(api.Options{})
//	sess := session.New(nil, session.DefaultTTL)
//	trav := taxon.NewTraverser(src, sess.Memo(), taxon.Options{})
//
//	root, _ := trav.BuildTree(ctx, "Felidae", taxon.Family, 2, 5)
//	fmt.Print(treeviz.Text(root, treeviz.Options{}))
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include live GBIF tests
//
// [taxon]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/taxon
// [occurrence]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/occurrence
// [richness]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/richness
// [cache]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/session
// [httputil]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/observability
// [integrations/gbif]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/integrations/gbif
// [source/gbif]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/source/gbif
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/render
//
// [taxon.Resolver]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/taxon#Resolver
// [taxon.Traverser]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/taxon#Traverser
// [taxon.Paginator]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/taxon#Paginator
// [taxon.Node]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/taxon#Node
// [occurrence.Collector]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/occurrence#Collector
// [richness.Grid]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/richness#Grid
// [render/treeviz]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/render/treeviz
// [render/heatmap]: https://pkg.go.dev/github.com/matzehuels/taxonscope/pkg/render/heatmap
package pkg
