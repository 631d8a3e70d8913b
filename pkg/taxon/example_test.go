package taxon_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/taxonscope/pkg/taxon"
)

// staticSource serves a fixed checklist.
type staticSource struct {
	names    map[string]taxon.ID
	children map[taxon.ID][]taxon.Record
}

func (s staticSource) Match(_ context.Context, name string, _ taxon.Rank) (taxon.ID, error) {
	if id, ok := s.names[name]; ok {
		return id, nil
	}
	return 0, taxon.ErrNotFound
}

func (s staticSource) Children(_ context.Context, id taxon.ID, offset, limit int) (taxon.Page, error) {
	all := s.children[id]
	if offset >= len(all) {
		return taxon.Page{EndOfRecords: true}, nil
	}
	end := min(offset+limit, len(all))
	return taxon.Page{Records: all[offset:end], EndOfRecords: end == len(all)}, nil
}

func ExampleNext() {
	r := taxon.Kingdom
	for {
		fmt.Print(r)
		next, ok := taxon.Next(r)
		if !ok {
			break
		}
		fmt.Print(" → ")
		r = next
	}
	fmt.Println()
	// Output: KINGDOM → PHYLUM → CLASS → ORDER → FAMILY → GENUS → SPECIES
}

func ExampleTraverser_BuildTree() {
	src := staticSource{
		names: map[string]taxon.ID{"Felidae": 9703},
		children: map[taxon.ID][]taxon.Record{
			9703: {
				{ID: 2435194, CanonicalName: "Panthera", Rank: taxon.Genus},
				{ID: 9700, CanonicalName: "Pantherinae", Rank: taxon.Unranked},
				{ID: 2435022, CanonicalName: "Felis", Rank: taxon.Genus},
			},
			2435194: {
				{ID: 5219404, CanonicalName: "Panthera leo", Rank: taxon.Species},
				{ID: 5219426, CanonicalName: "Panthera onca", Rank: taxon.Species},
			},
			2435022: {
				{ID: 2435035, CanonicalName: "Felis catus", Rank: taxon.Species},
			},
		},
	}

	t := taxon.NewTraverser(src, nil, taxon.Options{})
	root, err := t.BuildTree(context.Background(), "Felidae", taxon.Family, 2, 10)
	if err != nil {
		fmt.Println(err)
		return
	}
	root.Walk(func(n *taxon.Node, depth int) bool {
		fmt.Printf("%s%s (%s)\n", strings.Repeat("  ", depth), n.Name, n.Rank)
		return true
	})
	// Output:
	// Felidae (FAMILY)
	//   Panthera (GENUS)
	//     Panthera leo (SPECIES)
	//     Panthera onca (SPECIES)
	//   Felis (GENUS)
	//     Felis catus (SPECIES)
}

func ExampleRecord_DisplayName() {
	fmt.Println(taxon.Record{CanonicalName: "Felis catus", ScientificName: "Felis catus Linnaeus, 1758"}.DisplayName())
	fmt.Println(taxon.Record{ScientificName: "Felis catus Linnaeus, 1758"}.DisplayName())
	fmt.Println(taxon.Record{}.DisplayName())
	// Output:
	// Felis catus
	// Felis catus Linnaeus, 1758
	// Unknown
}
