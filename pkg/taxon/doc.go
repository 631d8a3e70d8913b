// Package taxon resolves GBIF names and browses the checklist as a lazily
// expanded, rank-aware tree.
//
// # Overview
//
// Three pieces cooperate, all sharing one session [cache.Memo]:
//
//   - [Resolver] turns a (name, rank) pair into a usage key ([ID])
//   - [Paginator] gathers the direct children of a key across pages
//   - [Traverser] assembles [Node] trees, eagerly ([Traverser.BuildTree]) or
//     one level at a time ([Traverser.Expand])
//
// The checklist service itself sits behind the [Source] interface; see
// pkg/source/gbif for the GBIF implementation.
//
// # Ranks
//
// [Rank] covers the principal hierarchy Kingdom through Species. Under
// [ModeStrict] a child is attached only when its rank is [Next] of its
// parent's, so a browse walks Kingdom → Phylum → Class and so on. Under
// [ModePermissive] other descending ranks (subfamilies, tribes, ...) are
// attached too, as leaf annotations. [ModeOff] disables the filter.
//
// # Failure model
//
// Service failures become "no results" at the point of failure: an
// unresolvable name yields [ErrNotFound], a failed page ends pagination.
// Only context cancellation is returned as an error from traversal.
//
// # Example
//
//	sess := session.New(nil, 0)
//	t := taxon.NewTraverser(gbif.NewSource(client), sess.Memo(), taxon.Options{})
//
//	root, err := t.BuildTree(ctx, "Felidae", taxon.Family, 2, 10)
//	if err != nil {
//	    return err
//	}
//	root.Walk(func(n *taxon.Node, depth int) bool {
//	    fmt.Println(strings.Repeat("  ", depth) + n.Name)
//	    return true
//	})
//
// [cache.Memo]: github.com/matzehuels/taxonscope/pkg/cache.Memo
package taxon
