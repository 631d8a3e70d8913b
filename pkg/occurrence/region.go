package occurrence

import (
	"fmt"
	"strings"
)

// Region is a latitude/longitude bounding box queried independently.
type Region struct {
	Name   string  `toml:"name" json:"name"`
	LatMin float64 `toml:"lat_min" json:"latMin"`
	LatMax float64 `toml:"lat_max" json:"latMax"`
	LonMin float64 `toml:"lon_min" json:"lonMin"`
	LonMax float64 `toml:"lon_max" json:"lonMax"`
}

// Continents are the default collection regions, queried in this order.
var Continents = []Region{
	{Name: "Africa", LatMin: -35, LatMax: 37, LonMin: -18, LonMax: 52},
	{Name: "Asia", LatMin: 0, LatMax: 80, LonMin: 26, LonMax: 180},
	{Name: "Europe", LatMin: 35, LatMax: 72, LonMin: -25, LonMax: 60},
	{Name: "North America", LatMin: 5, LatMax: 84, LonMin: -170, LonMax: -50},
	{Name: "South America", LatMin: -60, LatMax: 15, LonMin: -90, LonMax: -30},
	{Name: "Oceania", LatMin: -50, LatMax: 0, LonMin: 110, LonMax: 180},
}

// Validate checks that the box is well formed and inside WGS84 bounds.
func (r Region) Validate() error {
	switch {
	case r.LatMin > r.LatMax:
		return fmt.Errorf("region %q: lat_min %v > lat_max %v", r.Name, r.LatMin, r.LatMax)
	case r.LonMin > r.LonMax:
		return fmt.Errorf("region %q: lon_min %v > lon_max %v", r.Name, r.LonMin, r.LonMax)
	case r.LatMin < -90 || r.LatMax > 90:
		return fmt.Errorf("region %q: latitude outside [-90, 90]", r.Name)
	case r.LonMin < -180 || r.LonMax > 180:
		return fmt.Errorf("region %q: longitude outside [-180, 180]", r.Name)
	}
	return nil
}

// Contains reports whether (lat, lon) lies inside the box, edges included.
func (r Region) Contains(lat, lon float64) bool {
	return lat >= r.LatMin && lat <= r.LatMax && lon >= r.LonMin && lon <= r.LonMax
}

// SelectRegions returns the continents named in names, in the given order,
// matching case-insensitively. An empty list selects all continents.
func SelectRegions(names []string) ([]Region, error) {
	if len(names) == 0 {
		return Continents, nil
	}
	out := make([]Region, 0, len(names))
	for _, name := range names {
		r, ok := lookupContinent(name)
		if !ok {
			return nil, fmt.Errorf("unknown region %q", name)
		}
		out = append(out, r)
	}
	return out, nil
}

func lookupContinent(name string) (Region, bool) {
	for _, r := range Continents {
		if strings.EqualFold(r.Name, strings.TrimSpace(name)) {
			return r, true
		}
	}
	return Region{}, false
}
