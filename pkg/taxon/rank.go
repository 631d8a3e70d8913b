package taxon

import (
	"fmt"
	"strings"
)

// Rank is a position in the principal Linnaean hierarchy.
//
// The principal ranks are ordered Kingdom < Phylum < Class < Order < Family <
// Genus < Species. Every other rank GBIF reports (subfamily, tribe, variety,
// ...) is [Unranked], which sorts after all principal ranks and therefore
// always counts as descending from its parent.
type Rank int

const (
	Unranked Rank = iota - 1
	Kingdom
	Phylum
	Class
	Order
	Family
	Genus
	Species
)

var rankNames = [...]string{"KINGDOM", "PHYLUM", "CLASS", "ORDER", "FAMILY", "GENUS", "SPECIES"}

// Ranks returns the principal ranks in hierarchy order.
func Ranks() []Rank {
	return []Rank{Kingdom, Phylum, Class, Order, Family, Genus, Species}
}

// ParseRank maps a GBIF rank name to a Rank, ignoring case and surrounding
// space. Names outside the principal hierarchy map to Unranked.
func ParseRank(s string) Rank {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range rankNames {
		if name == s {
			return Rank(i)
		}
	}
	return Unranked
}

// LookupRank is like ParseRank but rejects names outside the principal
// hierarchy. Use it for user input, where a typo should not silently become
// Unranked.
func LookupRank(s string) (Rank, error) {
	r := ParseRank(s)
	if r == Unranked {
		return Unranked, fmt.Errorf("unknown rank %q (want one of %s)", s, strings.Join(rankNames[:], ", "))
	}
	return r, nil
}

// String returns the GBIF name of r, or "UNRANKED".
func (r Rank) String() string {
	if r.Valid() {
		return rankNames[r]
	}
	return "UNRANKED"
}

// Valid reports whether r is one of the principal ranks.
func (r Rank) Valid() bool { return r >= Kingdom && r <= Species }

// Next returns the rank immediately below r. It reports false for Species
// and for Unranked.
func Next(r Rank) (Rank, bool) {
	if !r.Valid() || r == Species {
		return Unranked, false
	}
	return r + 1, true
}

// Compare orders ranks by hierarchy depth, with Unranked after all principal
// ranks. It returns -1, 0 or +1.
func Compare(a, b Rank) int {
	ia, ib := order(a), order(b)
	switch {
	case ia < ib:
		return -1
	case ia > ib:
		return 1
	}
	return 0
}

func order(r Rank) int {
	if !r.Valid() {
		return len(rankNames)
	}
	return int(r)
}

// Descends reports whether a child of rank child may sit below a parent of
// rank parent. Unranked children always descend; ranked children must come
// strictly later in the hierarchy.
func Descends(parent, child Rank) bool {
	if child == Unranked {
		return true
	}
	return Compare(child, parent) > 0
}

// MarshalText encodes r as its GBIF name.
func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a GBIF rank name.
func (r *Rank) UnmarshalText(b []byte) error {
	*r = ParseRank(string(b))
	return nil
}
