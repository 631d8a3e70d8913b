// Package richness bins occurrences into a latitude/longitude grid and
// measures species richness, the number of distinct species per cell.
//
// The default grid has one-degree cells indexed by floor(lat), floor(lon):
// (-0.5, 10.2) falls in cell (-1, 10). [Grid] generalises the cell size.
// Aggregation is order independent and has no side effects.
package richness

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/taxonscope/pkg/occurrence"
)

// DefaultCellSize is the edge length of a grid cell in degrees.
const DefaultCellSize = 1.0

// Bin is the index of a grid cell.
type Bin struct {
	Lat int `json:"lat"`
	Lon int `json:"lon"`
}

func (b Bin) String() string { return fmt.Sprintf("(%d, %d)", b.Lat, b.Lon) }

// Triple is one heat-map point: the cell's south-west corner in degrees and
// its richness as the weight.
type Triple struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight int     `json:"weight"`
}

// Grid bins coordinates into square cells of Size degrees.
type Grid struct {
	Size float64
}

// DefaultGrid is the one-degree grid.
var DefaultGrid = Grid{Size: DefaultCellSize}

func (g Grid) size() float64 {
	if g.Size <= 0 {
		return DefaultCellSize
	}
	return g.Size
}

// Bin returns the cell containing (lat, lon).
func (g Grid) Bin(lat, lon float64) Bin {
	s := g.size()
	return Bin{Lat: int(math.Floor(lat / s)), Lon: int(math.Floor(lon / s))}
}

// Aggregate returns the number of distinct species observed in each cell.
// Cells without occurrences are absent.
func (g Grid) Aggregate(occs []occurrence.Occurrence) map[Bin]int {
	species := make(map[Bin]map[string]struct{})
	for _, o := range occs {
		b := g.Bin(o.Lat, o.Lon)
		set, ok := species[b]
		if !ok {
			set = make(map[string]struct{})
			species[b] = set
		}
		set[o.Species] = struct{}{}
	}

	out := make(map[Bin]int, len(species))
	for b, set := range species {
		out[b] = len(set)
	}
	return out
}

// ToTriples converts cell richness to heat-map points sorted by latitude
// then longitude. Cell indices are scaled back to degrees.
func (g Grid) ToTriples(bins map[Bin]int) []Triple {
	s := g.size()
	out := make([]Triple, 0, len(bins))
	for b, w := range bins {
		out = append(out, Triple{Lat: float64(b.Lat) * s, Lon: float64(b.Lon) * s, Weight: w})
	}
	slices.SortFunc(out, func(a, b Triple) int {
		if c := cmp.Compare(a.Lat, b.Lat); c != 0 {
			return c
		}
		return cmp.Compare(a.Lon, b.Lon)
	})
	return out
}

// Aggregate bins occs on the one-degree grid.
func Aggregate(occs []occurrence.Occurrence) map[Bin]int {
	return DefaultGrid.Aggregate(occs)
}

// ToTriples converts one-degree cell richness to sorted heat-map points.
func ToTriples(bins map[Bin]int) []Triple {
	return DefaultGrid.ToTriples(bins)
}

// Summary describes an aggregation.
type Summary struct {
	Occurrences int `json:"occurrences"`
	Species     int `json:"species"`
	Cells       int `json:"cells"`
	MaxRichness int `json:"maxRichness"`
}

// Summarize reports totals for occs and their aggregation.
func Summarize(occs []occurrence.Occurrence, bins map[Bin]int) Summary {
	species := make(map[string]struct{})
	for _, o := range occs {
		species[o.Species] = struct{}{}
	}
	s := Summary{Occurrences: len(occs), Species: len(species), Cells: len(bins)}
	for _, w := range bins {
		s.MaxRichness = max(s.MaxRichness, w)
	}
	return s
}
