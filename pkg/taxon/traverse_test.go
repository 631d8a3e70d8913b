package taxon

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/matzehuels/taxonscope/pkg/cache"
)

func TestBuildTree_UnresolvedRoot(t *testing.T) {
	src := &fakeSource{children: flatChildren(10, Phylum)}
	tr := NewTraverser(src, nil, Options{})

	root, err := tr.BuildTree(context.Background(), "Animalia", Family, 2, 5)
	if err != nil {
		t.Fatalf("BuildTree() error: %v", err)
	}
	if root.Found() {
		t.Error("root should be unresolved")
	}
	if !root.Populated || len(root.Children) != 0 {
		t.Errorf("unresolved root should be populated with no children, got %+v", root)
	}
	if len(src.calls()) != 0 {
		t.Error("an unresolved root must not fetch children")
	}
}

func TestBuildTree_BoundedWithEndlessFanOut(t *testing.T) {
	for _, mode := range []Mode{ModeStrict, ModePermissive, ModeOff} {
		t.Run(mode.String(), func(t *testing.T) {
			src := &fakeSource{
				names:    map[string]ID{"Animalia": 1},
				children: endlessChildren(map[ID]Rank{1: Kingdom}),
			}
			tr := NewTraverser(src, nil, Options{Mode: mode, PageSize: 3})

			root, err := tr.BuildTree(context.Background(), "Animalia", Kingdom, 2, 5)
			if err != nil {
				t.Fatalf("BuildTree() error: %v", err)
			}
			if root.Depth() != 2 {
				t.Errorf("depth = %d, want 2", root.Depth())
			}
			if root.Size() != 1+5+25 {
				t.Errorf("size = %d, want 31", root.Size())
			}
			root.Walk(func(n *Node, depth int) bool {
				switch depth {
				case 0, 1:
					if len(n.Children) != 5 {
						t.Errorf("%s at depth %d has %d children, want 5", n.Name, depth, len(n.Children))
					}
				case 2:
					if n.Populated || n.Leaf {
						t.Errorf("%s at max depth should be an unpopulated node", n.Name)
					}
					if n.Rank != Class {
						t.Errorf("%s at depth 2 has rank %v, want CLASS", n.Name, n.Rank)
					}
				}
				return true
			})
		})
	}
}

func TestBuildTree_StrictRankInvariant(t *testing.T) {
	mixed := []Rank{Genus, Species, Unranked, Family, Order, Genus}
	src := &fakeSource{
		names: map[string]ID{"Felidae": 1},
		children: func(id ID, offset, limit int) (Page, error) {
			page := Page{EndOfRecords: true}
			for i, r := range mixed {
				page.Records = append(page.Records, Record{ID: id*10 + ID(i) + 1, CanonicalName: r.String(), Rank: r})
			}
			return page, nil
		},
	}
	tr := NewTraverser(src, nil, Options{})

	root, err := tr.BuildTree(context.Background(), "Felidae", Family, 3, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root children = %d, want 2 genera", len(root.Children))
	}
	root.Walk(func(n *Node, _ int) bool {
		next, _ := Next(n.Rank)
		for _, c := range n.Children {
			if c.Rank != next {
				t.Errorf("%v child attached below %v", c.Rank, n.Rank)
			}
		}
		return true
	})
}

func TestExpand_Permissive(t *testing.T) {
	src := &fakeSource{children: func(id ID, offset, limit int) (Page, error) {
		return Page{EndOfRecords: true, Records: []Record{
			{ID: 2, CanonicalName: "Panthera", Rank: Genus},
			{ID: 3, CanonicalName: "Pantherinae", Rank: Unranked},
			{ID: 4, CanonicalName: "Felis catus", Rank: Species},
			{ID: 5, CanonicalName: "Carnivora", Rank: Order},
			{ID: 6, CanonicalName: "Felidae", Rank: Family},
		}}, nil
	}}
	tr := NewTraverser(src, nil, Options{Mode: ModePermissive})

	node := &Node{ID: 1, Name: "Felidae", Rank: Family}
	children, err := tr.Expand(context.Background(), node)
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 3 {
		t.Fatalf("children = %d, want 3", len(children))
	}
	if children[0].Leaf || children[0].Name != "Panthera" {
		t.Errorf("next-rank child should be expandable: %+v", children[0])
	}
	for _, c := range children[1:] {
		if !c.Leaf {
			t.Errorf("%s should be a leaf annotation", c.Name)
		}
		if got, _ := tr.Expand(context.Background(), c); len(got) != 0 {
			t.Errorf("leaf %s expanded to %d children", c.Name, len(got))
		}
	}
}

func TestExpand_Off(t *testing.T) {
	src := &fakeSource{children: flatChildren(4, Unranked)}
	tr := NewTraverser(src, nil, Options{Mode: ModeOff})

	node := &Node{ID: 1, Rank: Species}
	children, _ := tr.Expand(context.Background(), node)
	if len(children) != 4 {
		t.Fatalf("children = %d, want 4", len(children))
	}
	for _, c := range children {
		if c.Leaf {
			t.Error("mode off should not create leaves")
		}
	}
}

func TestExpand_Idempotent(t *testing.T) {
	src := &fakeSource{children: flatChildren(12, Genus)}
	memo := cache.NewMemo(nil, nil, 0)
	tr := NewTraverser(src, memo, Options{PageSize: 5})

	node := &Node{ID: 1, Rank: Family}
	first, _ := tr.Expand(context.Background(), node)
	n := len(src.calls())

	again, _ := tr.Expand(context.Background(), node)
	if len(src.calls()) != n || len(again) != len(first) {
		t.Error("expanding a populated node should return its children without fetching")
	}

	twin := &Node{ID: 1, Rank: Family}
	got, _ := tr.Expand(context.Background(), twin)
	if len(src.calls()) != n {
		t.Error("expanding an equal node should be served from the memo")
	}
	if len(got) != len(first) {
		t.Errorf("twin children = %d, want %d", len(got), len(first))
	}
}

func TestExpand_StrictSpeciesSkipsFetch(t *testing.T) {
	src := &fakeSource{children: flatChildren(3, Unranked)}
	tr := NewTraverser(src, nil, Options{})

	node := &Node{ID: 7, Rank: Species}
	children, err := tr.Expand(context.Background(), node)
	if err != nil || len(children) != 0 {
		t.Fatalf("Expand(species) = %v, %v", children, err)
	}
	if !node.Populated {
		t.Error("node should be marked populated")
	}
	if len(src.calls()) != 0 {
		t.Error("strict mode should not fetch below species")
	}
}

func TestRoots(t *testing.T) {
	src := &fakeSource{names: map[string]ID{"Animalia": 1, "Plantae": 6}}
	tr := NewTraverser(src, nil, Options{})

	roots, err := tr.Roots(context.Background(), []RootSpec{
		{Name: "Animalia", Rank: "KINGDOM"},
		{Name: "Plantae", Rank: "kingdom"},
		{Name: "Nonexistia", Rank: "KINGDOM"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 3 {
		t.Fatalf("roots = %d, want 3", len(roots))
	}
	if roots[0].ID != 1 || roots[0].Rank != Kingdom || roots[0].Populated {
		t.Errorf("unexpected root: %+v", roots[0])
	}
	if roots[2].Found() {
		t.Error("unknown root should be unresolved")
	}
}

func TestBuildTree_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{
		names: map[string]ID{"Animalia": 1},
		children: func(id ID, offset, limit int) (Page, error) {
			cancel()
			return Page{}, context.Canceled
		},
	}
	tr := NewTraverser(src, nil, Options{})

	if _, err := tr.BuildTree(ctx, "Animalia", Kingdom, 2, 5); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExpand_StrictCapCountsAttachedChildren(t *testing.T) {
	listing := []Rank{Unranked, Unranked, Species, Unranked, Unranked, Genus, Genus, Genus}
	children := func(id ID, offset, limit int) (Page, error) {
		var page Page
		for i := offset; i < len(listing) && i < offset+limit; i++ {
			page.Records = append(page.Records, Record{ID: ID(100 + i), CanonicalName: fmt.Sprintf("c%d", i), Rank: listing[i]})
		}
		page.EndOfRecords = offset+limit >= len(listing)
		return page, nil
	}

	t.Run("scans past rejected records", func(t *testing.T) {
		src := &fakeSource{children: children}
		tr := NewTraverser(src, nil, Options{PageSize: 2, MaxChildren: 2})

		got, err := tr.Expand(context.Background(), &Node{ID: 1, Name: "Felidae", Rank: Family})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].ID != 105 || got[1].ID != 106 {
			t.Fatalf("children = %+v, want the first two genera", got)
		}
		if n := len(src.calls()); n != 4 {
			t.Errorf("requests = %d, want 4 (stop once the cap is met)", n)
		}
	})

	t.Run("bounded by MaxScanned", func(t *testing.T) {
		src := &fakeSource{children: children}
		tr := NewTraverser(src, nil, Options{PageSize: 2, MaxChildren: 2, MaxScanned: 4})

		got, err := tr.Expand(context.Background(), &Node{ID: 1, Name: "Felidae", Rank: Family})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("children = %d, want 0 within the first 4 records", len(got))
		}
		read := 0
		for _, c := range src.calls() {
			read += c.limit
		}
		if read != 4 {
			t.Errorf("records requested = %d, want 4", read)
		}
	})
}
