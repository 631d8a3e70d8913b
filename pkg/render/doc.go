// Package render groups the output writers for taxonscope results.
//
//   - [treeviz]: browse trees as indented text, JSON, Graphviz DOT or SVG
//   - [heatmap]: richness triples as a Leaflet heat-map page, JSON or CSV
//
// Renderers are pure: they take a finished [taxon.Node] tree or a sorted
// triple list and return bytes. Fetching and aggregation happen upstream in
// packages taxon, occurrence and richness.
//
// [treeviz]: github.com/matzehuels/taxonscope/pkg/render/treeviz
// [heatmap]: github.com/matzehuels/taxonscope/pkg/render/heatmap
// [taxon.Node]: github.com/matzehuels/taxonscope/pkg/taxon.Node
package render
