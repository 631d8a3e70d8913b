// Package treeviz renders taxonomy browse trees.
//
// # Formats
//
//   - text: an indented terminal tree drawn with lipgloss
//   - json: the [taxon.Node] tree as indented JSON
//   - dot: Graphviz DOT source, one box per taxon
//   - svg: the DOT source laid out in-process with Graphviz
//
// # Usage
//
//	root, _ := traverser.BuildTree(ctx, "Felidae", taxon.Family, 2, 10)
//	out, err := treeviz.Render(root, treeviz.FormatSVG, treeviz.Options{})
//
// Leaf annotations (permissive mode) are drawn dashed in DOT/SVG and dimmed
// in text. Unpopulated nodes are marked with an ellipsis so a reader can
// tell "not expanded" from "no children".
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering and [github.com/charmbracelet/lipgloss/tree] for text output.
//
// [taxon.Node]: github.com/matzehuels/taxonscope/pkg/taxon.Node
package treeviz
