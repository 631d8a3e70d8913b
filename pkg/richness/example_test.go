package richness_test

import (
	"fmt"

	"github.com/matzehuels/taxonscope/pkg/occurrence"
	"github.com/matzehuels/taxonscope/pkg/richness"
)

func ExampleAggregate() {
	occs := []occurrence.Occurrence{
		{Species: "Panthera leo", Lat: -1.2, Lon: 36.8},
		{Species: "Panthera pardus", Lat: -1.9, Lon: 36.1},
		{Species: "Panthera leo", Lat: -1.5, Lon: 36.5},
		{Species: "Acinonyx jubatus", Lat: 0.3, Lon: 37.6},
	}
	for _, t := range richness.ToTriples(richness.Aggregate(occs)) {
		fmt.Printf("%v,%v,%d\n", t.Lat, t.Lon, t.Weight)
	}
	// Output:
	// -2,36,2
	// 0,37,1
}
