package gbif

// NameMatch is the /species/match response.
type NameMatch struct {
	UsageKey       int64  `json:"usageKey"`
	ScientificName string `json:"scientificName"`
	CanonicalName  string `json:"canonicalName"`
	Rank           string `json:"rank"`
	Status         string `json:"status"`
	Confidence     int    `json:"confidence"`
	MatchType      string `json:"matchType"` // EXACT, FUZZY, HIGHERRANK or NONE
}

// NameUsage is one taxon row in a children listing.
type NameUsage struct {
	Key             int64  `json:"key"`
	ScientificName  string `json:"scientificName"`
	CanonicalName   string `json:"canonicalName"`
	Rank            string `json:"rank"`
	TaxonomicStatus string `json:"taxonomicStatus"`
	NumDescendants  int    `json:"numDescendants"`
}

// ChildrenPage is the /species/{key}/children response.
type ChildrenPage struct {
	Offset       int         `json:"offset"`
	Limit        int         `json:"limit"`
	EndOfRecords bool        `json:"endOfRecords"`
	Results      []NameUsage `json:"results"`
}

// Occurrence is one occurrence search record. Coordinates are pointers so a
// missing value can be told apart from 0.0.
type Occurrence struct {
	Key              int64    `json:"key"`
	Species          string   `json:"species"`
	DecimalLatitude  *float64 `json:"decimalLatitude"`
	DecimalLongitude *float64 `json:"decimalLongitude"`
	CountryCode      string   `json:"countryCode,omitempty"`
}

// OccurrencePage is the /occurrence/search response.
type OccurrencePage struct {
	Offset       int          `json:"offset"`
	Limit        int          `json:"limit"`
	EndOfRecords bool         `json:"endOfRecords"`
	Count        int          `json:"count"`
	Results      []Occurrence `json:"results"`
}
