package treeviz

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/taxonscope/pkg/taxon"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON, FormatDOT, FormatSVG}

// Options configures tree rendering.
type Options struct {
	// Detailed adds GBIF keys (and in DOT, ranks and descendant counts) to labels.
	Detailed bool
	// Plain disables ANSI styling in text output.
	Plain bool
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("invalid tree format: %q (must be one of: text, json, dot, svg)", format)
	}
	return nil
}

// Render writes root in the given format.
func Render(root *taxon.Node, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(Text(root, opts)), nil
	case FormatJSON:
		return JSON(root)
	case FormatDOT:
		return []byte(ToDOT(root, opts)), nil
	case FormatSVG:
		return RenderSVG(ToDOT(root, opts))
	}
	return nil, ValidateFormat(format)
}

// JSON encodes the tree with two-space indentation.
func JSON(root *taxon.Node) ([]byte, error) {
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	return append(data, '\n'), nil
}
