package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/taxonscope/pkg/taxon"
)

// rankColors fills DOT boxes by rank so levels read at a glance.
var rankColors = map[taxon.Rank]string{
	taxon.Kingdom: "#fde2e4",
	taxon.Phylum:  "#fff1e6",
	taxon.Class:   "#e2ece9",
	taxon.Order:   "#dfe7fd",
	taxon.Family:  "#e8dff5",
	taxon.Genus:   "#fcf4dd",
	taxon.Species: "#ddedea",
}

// ToDOT converts a browse tree to Graphviz DOT source.
func ToDOT(root *taxon.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	seq := 0
	ids := make(map[*taxon.Node]string)
	var edges [][2]*taxon.Node
	root.Walk(func(n *taxon.Node, _ int) bool {
		ids[n] = dotID(n, &seq)
		fmt.Fprintf(&buf, "  %q [%s];\n", ids[n], strings.Join(fmtAttrs(n, opts), ", "))
		for _, c := range n.Children {
			edges = append(edges, [2]*taxon.Node{n, c})
		}
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", ids[e[0]], ids[e[1]])
	}

	buf.WriteString("}\n")
	return buf.String()
}

// dotID returns the GBIF key for resolved taxa and a sequence id otherwise,
// so two unresolved names never collapse into one vertex.
func dotID(n *taxon.Node, seq *int) string {
	if n.Found() {
		return strconv.FormatInt(int64(n.ID), 10)
	}
	*seq++
	return fmt.Sprintf("unresolved-%d", *seq)
}

func fmtLabel(n *taxon.Node, opts Options) string {
	label := n.Name
	if opts.Detailed {
		label += "\n" + strings.ToLower(n.Rank.String())
		if n.Found() {
			label += fmt.Sprintf("\nkey: %d", n.ID)
		}
		if n.NumDescendants > 0 {
			label += fmt.Sprintf("\ndescendants: %d", n.NumDescendants)
		}
	}
	if !n.Populated && n.Expandable() {
		label += " …"
	}
	return label
}

func fmtAttrs(n *taxon.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts))}
	switch {
	case !n.Found():
		attrs = append(attrs, "style=\"rounded,dashed\"", "fontcolor=grey40")
	case n.Leaf:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	default:
		if c, ok := rankColors[n.Rank]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
		}
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales from the
// origin regardless of Graphviz's point-based offsets.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
