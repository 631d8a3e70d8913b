package treeviz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/taxonscope/pkg/taxon"
)

var (
	nameStyle  = lipgloss.NewStyle().Bold(true)
	rankStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	enumStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginRight(1)
	plainStyle = lipgloss.NewStyle()
)

// Text draws the tree with box-drawing branches, one taxon per line:
//
//	Felidae family
//	├── Panthera genus
//	│   ├── Panthera leo species …
//	...
//
// With Options.Plain no ANSI styling is emitted.
func Text(root *taxon.Node, opts Options) string {
	t := buildTree(root, opts)
	if opts.Plain {
		t.EnumeratorStyle(plainStyle.MarginRight(1))
	} else {
		t.EnumeratorStyle(enumStyle)
	}
	return t.String() + "\n"
}

func buildTree(n *taxon.Node, opts Options) *tree.Tree {
	t := tree.Root(textLabel(n, opts))
	for _, c := range n.Children {
		if len(c.Children) == 0 {
			t.Child(textLabel(c, opts))
			continue
		}
		t.Child(buildTree(c, opts))
	}
	return t
}

func textLabel(n *taxon.Node, opts Options) string {
	var parts []string
	rank := strings.ToLower(n.Rank.String())
	switch {
	case opts.Plain:
		parts = append(parts, n.Name, rank)
	case n.Leaf || !n.Found():
		parts = append(parts, dimStyle.Render(n.Name), dimStyle.Render(rank))
	default:
		parts = append(parts, nameStyle.Render(n.Name), rankStyle.Render(rank))
	}
	if opts.Detailed && n.Found() {
		parts = append(parts, fmt.Sprintf("[%d]", n.ID))
	}
	if !n.Found() {
		parts = append(parts, "(not found)")
	} else if !n.Populated && n.Expandable() {
		parts = append(parts, "…")
	}
	return strings.Join(parts, " ")
}
