package taxon

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/taxonscope/pkg/cache"
	"github.com/matzehuels/taxonscope/pkg/observability"
)

// RootSpec names a taxon to resolve as a browse root.
type RootSpec struct {
	Name string `toml:"name" json:"name"`
	Rank string `toml:"rank" json:"rank"`
}

// Traverser builds browse trees from a resolver and a paginator sharing one
// memo. It keeps no expansion state of its own: callers own the nodes and
// pass them back in.
type Traverser struct {
	resolver  *Resolver
	paginator *Paginator
	opts      Options
}

// NewTraverser creates a Traverser over src. memo is shared by the resolver
// and the paginator; nil memoizes in-process only.
func NewTraverser(src Source, memo *cache.Memo, opts Options) *Traverser {
	opts = opts.WithDefaults()
	if memo == nil {
		memo = cache.NewMemo(nil, nil, 0)
	}
	return &Traverser{
		resolver:  NewResolver(src, memo, opts.Logger),
		paginator: NewPaginator(src, memo, opts.Logger),
		opts:      opts,
	}
}

// Options returns the traverser's effective options.
func (t *Traverser) Options() Options { return t.opts }

// Resolver returns the traverser's resolver.
func (t *Traverser) Resolver() *Resolver { return t.resolver }

// Paginator returns the traverser's paginator.
func (t *Traverser) Paginator() *Paginator { return t.paginator }

// Root resolves name at rank into an unpopulated node. An unresolvable name
// yields a populated node with no children and Found() == false.
func (t *Traverser) Root(ctx context.Context, name string, rank Rank) (*Node, error) {
	id, err := t.resolver.Resolve(ctx, name, rank)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	n := &Node{ID: id, Name: name, Rank: rank}
	if !n.Found() {
		n.Populated = true
	}
	return n, nil
}

// Roots resolves each RootSpec into a root node, in order. Unresolvable specs
// produce unresolved nodes rather than errors.
func (t *Traverser) Roots(ctx context.Context, specs []RootSpec) ([]*Node, error) {
	nodes := make([]*Node, 0, len(specs))
	for _, s := range specs {
		n, err := t.Root(ctx, s.Name, ParseRank(s.Rank))
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// BuildTree resolves rootName at rootRank and eagerly expands the tree to
// maxDepth levels, keeping at most maxChildren children per node. Values
// <= 0 fall back to the traverser's options. Nodes at maxDepth are left
// unpopulated so they can still be expanded lazily.
//
// An unresolvable root yields an unresolved node and a nil error. The only
// error is ctx.Err().
func (t *Traverser) BuildTree(ctx context.Context, rootName string, rootRank Rank, maxDepth, maxChildren int) (*Node, error) {
	if maxDepth <= 0 {
		maxDepth = t.opts.MaxDepth
	}
	if maxChildren <= 0 {
		maxChildren = t.opts.MaxChildren
	}

	root, err := t.Root(ctx, rootName, rootRank)
	if err != nil {
		return nil, err
	}
	t.opts.Logger.Debug("building tree", "root", rootName, "rank", rootRank, "id", root.ID, "depth", maxDepth)
	if err := t.build(ctx, root, 0, maxDepth, maxChildren); err != nil {
		return root, err
	}
	return root, nil
}

func (t *Traverser) build(ctx context.Context, n *Node, depth, maxDepth, maxChildren int) error {
	if depth >= maxDepth || !n.Expandable() {
		return nil
	}
	children, err := t.expand(ctx, n, maxChildren)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := t.build(ctx, c, depth+1, maxDepth, maxChildren); err != nil {
			return err
		}
	}
	return nil
}

// Expand populates one level of children below node, keeping at most
// Options.MaxChildren, and returns them. The cap counts attached children:
// in the rank-filtered modes the listing is scanned past rejected records
// until the cap is met, the listing ends, or Options.MaxScanned records
// have been read. Expanding a populated node returns
// its existing children without any fetch; leaves and unresolved nodes have
// no children. The only error is ctx.Err().
func (t *Traverser) Expand(ctx context.Context, node *Node) ([]*Node, error) {
	return t.expand(ctx, node, t.opts.MaxChildren)
}

func (t *Traverser) expand(ctx context.Context, n *Node, maxChildren int) ([]*Node, error) {
	if n.Populated {
		return n.Children, nil
	}
	if !n.Expandable() || !t.mayHaveChildren(n.Rank) {
		n.Populated = true
		return nil, nil
	}

	start := time.Now()
	scan := maxChildren
	if t.opts.Mode != ModeOff {
		scan = max(t.opts.MaxScanned, maxChildren)
	}
	var children []*Node
	scanned := 0
	err := t.paginator.ScanChildren(ctx, n.ID, t.opts.PageSize, scan, func(r Record) bool {
		scanned++
		if c := t.admit(n.Rank, r); c != nil {
			children = append(children, c)
		}
		return len(children) < maxChildren
	})
	if err != nil {
		return nil, err
	}

	n.Children = children
	n.Populated = true

	observability.Traversal().OnExpand(ctx, int64(n.ID), len(n.Children), time.Since(start))
	t.opts.Logger.Debug("expanded", "id", n.ID, "name", n.Name, "scanned", scanned, "attached", len(n.Children))
	return n.Children, nil
}

// mayHaveChildren reports whether any child of a parent at rank could pass
// the filter, so fetches that would be discarded are skipped.
func (t *Traverser) mayHaveChildren(rank Rank) bool {
	if t.opts.Mode != ModeStrict {
		return true
	}
	_, ok := Next(rank)
	return ok
}

// admit returns the node r becomes below a parent at rank parent, or nil if
// the mode drops it.
func (t *Traverser) admit(parent Rank, r Record) *Node {
	next, hasNext := Next(parent)
	switch t.opts.Mode {
	case ModeOff:
		return NewNode(r)
	case ModeStrict:
		if hasNext && r.Rank == next {
			return NewNode(r)
		}
	case ModePermissive:
		switch {
		case hasNext && r.Rank == next:
			return NewNode(r)
		case Descends(parent, r.Rank):
			leaf := NewNode(r)
			leaf.Leaf = true
			leaf.Populated = true
			return leaf
		}
	}
	return nil
}
