package taxon

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a name cannot be resolved to a usage key.
var ErrNotFound = errors.New("taxon not found")

// ID is a GBIF usage key. The zero ID means "unresolved".
type ID int64

// Record is one child row reported by the checklist service.
type Record struct {
	ID             ID     `json:"id"`
	CanonicalName  string `json:"canonicalName,omitempty"`
	ScientificName string `json:"scientificName,omitempty"`
	Rank           Rank   `json:"rank"`
	NumDescendants int    `json:"numDescendants"`
}

// DisplayName returns the canonical name, falling back to the scientific
// name and then to "Unknown".
func (r Record) DisplayName() string {
	switch {
	case r.CanonicalName != "":
		return r.CanonicalName
	case r.ScientificName != "":
		return r.ScientificName
	}
	return "Unknown"
}

// Page is one page of children as returned by a Source.
type Page struct {
	Records      []Record `json:"records"`
	EndOfRecords bool     `json:"endOfRecords"`
}

// Source is the checklist service the resolver and paginator read from.
//
// Implementations return [ErrNotFound] from Match when the service has no
// usable match. Any other error is treated as a transient failure.
type Source interface {
	Match(ctx context.Context, name string, rank Rank) (ID, error)
	Children(ctx context.Context, id ID, offset, limit int) (Page, error)
}

// Node is one taxon in a browse tree.
//
// Children is meaningful only once Populated is true. Leaf marks an
// annotation attached in permissive mode; leaves are never expanded.
type Node struct {
	ID             ID      `json:"id"`
	Name           string  `json:"name"`
	Rank           Rank    `json:"rank"`
	NumDescendants int     `json:"numDescendants"`
	Children       []*Node `json:"children,omitempty"`
	Populated      bool    `json:"populated"`
	Leaf           bool    `json:"leaf,omitempty"`
}

// NewNode creates an unpopulated node for a service record.
func NewNode(r Record) *Node {
	return &Node{
		ID:             r.ID,
		Name:           r.DisplayName(),
		Rank:           r.Rank,
		NumDescendants: r.NumDescendants,
	}
}

// Found reports whether the node refers to a resolved taxon.
func (n *Node) Found() bool { return n.ID != 0 }

// Expandable reports whether Expand could attach children to n.
func (n *Node) Expandable() bool { return n.Found() && !n.Leaf }

// Walk visits n and its populated descendants depth-first in child order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Size returns the number of nodes in the populated subtree rooted at n.
func (n *Node) Size() int {
	count := 0
	n.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Depth returns the depth of the deepest populated descendant of n.
func (n *Node) Depth() int {
	deepest := 0
	n.Walk(func(_ *Node, d int) bool {
		deepest = max(deepest, d)
		return true
	})
	return deepest
}
