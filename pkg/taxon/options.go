package taxon

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// Mode selects how children are filtered by rank during traversal.
type Mode int

const (
	// ModeStrict attaches only children whose rank is the next principal
	// rank below the parent.
	ModeStrict Mode = iota
	// ModePermissive attaches next-rank children as expandable nodes and
	// other descending ranks (including unranked) as leaf annotations.
	ModePermissive
	// ModeOff attaches every child and expands all of them. Traversal then
	// terminates by depth only.
	ModeOff
)

var modeNames = [...]string{"strict", "permissive", "off"}

// ParseMode parses "strict", "permissive" or "off", ignoring case.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return ModeStrict, fmt.Errorf("unknown rank mode %q (want strict, permissive or off)", s)
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

const (
	DefaultMaxChildren = 50   // Default children kept per node
	DefaultMaxDepth    = 2    // Default depth of an eager build
	DefaultMaxScanned  = 1000 // Default listing records read per rank-filtered expansion
)

// Options configures a Traverser.
type Options struct {
	PageSize    int         // Children page size (default: 100)
	MaxChildren int         // Children kept per node (default: 50)
	MaxDepth    int         // Depth of an eager build (default: 2)
	Mode        Mode        // Rank filter (default: ModeStrict)
	MaxScanned  int         // Listing records read per filtered expansion (default: 1000)
	Logger      *log.Logger // Structured logger (default: discard)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxChildren <= 0 {
		opts.MaxChildren = DefaultMaxChildren
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxScanned <= 0 {
		opts.MaxScanned = DefaultMaxScanned
	}
	opts.Logger = orDiscard(opts.Logger)
	return opts
}
