// Package source holds adapters that connect data services to the taxonomy
// and occurrence engines.
//
// Each subpackage implements [taxon.Source] and [occurrence.Source] for one
// service. The engines never see wire types; adapters translate them and map
// service errors onto the engines' sentinels.
//
// [taxon.Source]: github.com/matzehuels/taxonscope/pkg/taxon.Source
// [occurrence.Source]: github.com/matzehuels/taxonscope/pkg/occurrence.Source
package source
