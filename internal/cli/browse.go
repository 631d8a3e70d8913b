package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/taxonscope/pkg/errors"
	"github.com/matzehuels/taxonscope/pkg/pipeline"
	"github.com/matzehuels/taxonscope/pkg/render/heatmap"
	"github.com/matzehuels/taxonscope/pkg/taxon"
)

// browseCommand creates the interactive tree browser.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		rank string
		o    appOverrides
	)

	cmd := &cobra.Command{
		Use:   "browse [name]",
		Short: "Browse the taxonomy interactively",
		Long: `Browse the taxonomy interactively.

Without arguments the configured roots are shown (Animalia, Plantae and
Fungi by default). Children are fetched only when a node is first expanded
and are remembered for the rest of the session.

  ↑/↓ j/k   move
  ⏎         expand or collapse
  →/l  ←    expand / collapse (or jump to parent)
  h         write a species-richness map for the selected taxon
  q         quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := c.Config.Roots
			if len(args) == 1 {
				if _, err := taxon.LookupRank(rank); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidRank, err, "--rank")
				}
				specs = []taxon.RootSpec{{Name: args[0], Rank: rank}}
			}
			return c.runBrowse(cmd.Context(), specs, o)
		},
	}

	cmd.Flags().StringVarP(&rank, "rank", "r", "KINGDOM", "rank of the named root")
	cmd.Flags().StringVarP(&o.mode, "mode", "m", "", "rank filter: strict, permissive, off")
	cmd.Flags().IntVarP(&o.maxChildren, "max-children", "n", 0, "children shown per node (default from config: 50)")
	_ = cmd.RegisterFlagCompletionFunc("rank", completeRanks)
	_ = cmd.RegisterFlagCompletionFunc("mode", completeValues("strict", "permissive", "off"))

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, specs []taxon.RootSpec, o appOverrides) error {
	a, err := c.openApp(ctx, o)
	if err != nil {
		return err
	}
	defer a.Close()

	spinner := newSpinnerWithContext(ctx, "Resolving roots...")
	spinner.Start()
	roots, err := a.traverser.Roots(ctx, specs)
	spinner.Stop()
	if err != nil {
		return err
	}

	// The logger would scribble over the alternate screen.
	level := c.Logger.GetLevel()
	c.SetLogLevel(LogError)
	defer c.SetLogLevel(level)

	model := newBrowseModel(ctx, a.traverser, a.runner, roots)
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	if m, ok := final.(browseModel); ok {
		for _, p := range m.written {
			printFile(p)
		}
	}
	return nil
}

// =============================================================================
// browseModel - Lazy tree browser
// =============================================================================

var (
	browseCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseNameStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	browseRankStyle   = lipgloss.NewStyle().Foreground(colorGray)
	browseDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	browseErrStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

type browseRow struct {
	node   *taxon.Node
	depth  int
	parent int // row index of the parent, -1 for roots
}

// browseModel owns all expansion state; the traverser only fetches.
type browseModel struct {
	ctx    context.Context
	trav   *taxon.Traverser
	runner *pipeline.Runner

	roots    []*taxon.Node
	expanded map[*taxon.Node]bool
	rows     []browseRow

	cursor  int
	offset  int
	height  int
	loading *taxon.Node
	mapping *taxon.Node
	status  string
	written []string
}

type expandedMsg struct {
	node     *taxon.Node
	children []*taxon.Node
	err      error
}

type mappedMsg struct {
	node    *taxon.Node
	path    string
	summary string
	err     error
}

func newBrowseModel(ctx context.Context, trav *taxon.Traverser, runner *pipeline.Runner, roots []*taxon.Node) browseModel {
	m := browseModel{
		ctx:      ctx,
		trav:     trav,
		runner:   runner,
		roots:    roots,
		expanded: make(map[*taxon.Node]bool),
		height:   20,
	}
	m.rebuild()
	return m
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
		m.scroll()

	case expandedMsg:
		m.loading = nil
		if msg.err != nil {
			m.status = "expand failed: " + msg.err.Error()
			return m, nil
		}
		msg.node.Children = msg.children
		msg.node.Populated = true
		if len(msg.children) == 0 {
			m.status = msg.node.Name + " has no children to show"
			return m, nil
		}
		m.expanded[msg.node] = true
		m.status = ""
		m.rebuild()

	case mappedMsg:
		m.mapping = nil
		if msg.err != nil {
			m.status = "richness map failed: " + errors.UserMessage(msg.err)
			return m, nil
		}
		m.written = append(m.written, msg.path)
		m.status = fmt.Sprintf("wrote %s (%s)", msg.path, msg.summary)
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.scroll()
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.scroll()
		}
	case "enter", " ":
		if n := m.selected(); n != nil && m.expanded[n] {
			m.collapse(n)
			return m, nil
		}
		return m.expand()
	case "right", "l":
		return m.expand()
	case "left":
		n := m.selected()
		switch {
		case n == nil:
		case m.expanded[n]:
			m.collapse(n)
		case m.rows[m.cursor].parent >= 0:
			m.cursor = m.rows[m.cursor].parent
			m.scroll()
		}
	case "h":
		return m.mapRichness()
	}
	return m, nil
}

func (m browseModel) selected() *taxon.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

// expand shows the selected node's children, fetching them on first use.
// The fetch runs on a detached copy so View never reads a node mid-update.
func (m browseModel) expand() (tea.Model, tea.Cmd) {
	n := m.selected()
	if n == nil || m.loading != nil || m.expanded[n] {
		return m, nil
	}
	if n.Populated {
		if len(n.Children) > 0 {
			m.expanded[n] = true
			m.rebuild()
		}
		return m, nil
	}
	if !n.Expandable() {
		return m, nil
	}

	m.loading = n
	m.status = ""
	ctx, trav := m.ctx, m.trav
	scratch := &taxon.Node{ID: n.ID, Name: n.Name, Rank: n.Rank}
	return m, func() tea.Msg {
		children, err := trav.Expand(ctx, scratch)
		return expandedMsg{node: n, children: children, err: err}
	}
}

func (m *browseModel) collapse(n *taxon.Node) {
	delete(m.expanded, n)
	m.rebuild()
}

// mapRichness writes a heat map for the selected taxon to <name>.html.
func (m browseModel) mapRichness() (tea.Model, tea.Cmd) {
	n := m.selected()
	if n == nil || m.mapping != nil {
		return m, nil
	}
	if !n.Found() || !n.Rank.Valid() {
		m.status = "select a resolved taxon with a principal rank"
		return m, nil
	}

	m.mapping = n
	m.status = "collecting occurrences of " + n.Name + "..."
	ctx, runner := m.ctx, m.runner
	opts := pipeline.Options{
		Name:    n.Name,
		Rank:    n.Rank.String(),
		Formats: []string{heatmap.FormatHTML},
	}
	return m, func() tea.Msg {
		res, err := runner.Execute(ctx, opts)
		if err != nil {
			return mappedMsg{node: n, err: err}
		}
		paths, err := writeArtifacts(res.Artifacts, opts.Formats, "", n.Name)
		if err != nil {
			return mappedMsg{node: n, err: err}
		}
		summary := fmt.Sprintf("%d occurrences, %d cells", res.Summary.Occurrences, res.Summary.Cells)
		return mappedMsg{node: n, path: paths[0], summary: summary}
	}
}

// rebuild flattens the expanded part of the forest into rows, keeping the
// cursor on the same node when it is still visible.
func (m *browseModel) rebuild() {
	current := m.selected()
	m.rows = m.rows[:0]
	var add func(n *taxon.Node, depth, parent int)
	add = func(n *taxon.Node, depth, parent int) {
		idx := len(m.rows)
		m.rows = append(m.rows, browseRow{node: n, depth: depth, parent: parent})
		if m.expanded[n] {
			for _, c := range n.Children {
				add(c, depth+1, idx)
			}
		}
	}
	for _, r := range m.roots {
		add(r, 0, -1)
	}

	for i, r := range m.rows {
		if r.node == current {
			m.cursor = i
			break
		}
	}
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	m.scroll()
}

func (m *browseModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("GBIF Taxonomy"))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("↑/↓ move  ⏎ toggle  ← collapse  h richness map  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.loading != nil:
		b.WriteString(browseDimStyle.Render("loading " + m.loading.Name + "..."))
	case strings.Contains(m.status, "failed"):
		b.WriteString(browseErrStyle.Render(m.status))
	case m.status != "":
		b.WriteString(browseDimStyle.Render(m.status))
	default:
		b.WriteString(browseDimStyle.Render(fmt.Sprintf("[%d/%d]", m.cursor+1, len(m.rows))))
	}
	return b.String()
}

func (m browseModel) renderRow(i int) string {
	r := m.rows[i]
	n := r.node

	marker := "·"
	switch {
	case m.expanded[n]:
		marker = "▾"
	case n.Expandable() && !(n.Populated && len(n.Children) == 0):
		marker = "▸"
	}

	name := n.Name
	if i == m.cursor {
		name = browseCursorStyle.Render("▸ " + name)
	} else if n.Found() && !n.Leaf {
		name = browseNameStyle.Render("  " + name)
	} else {
		name = browseDimStyle.Render("  " + name)
	}

	parts := []string{strings.Repeat("  ", r.depth) + browseDimStyle.Render(marker) + name}
	parts = append(parts, browseRankStyle.Render(strings.ToLower(n.Rank.String())))
	switch {
	case !n.Found():
		parts = append(parts, browseErrStyle.Render("(not found)"))
	case n.NumDescendants > 0:
		parts = append(parts, browseDimStyle.Render(fmt.Sprintf("%d descendants", n.NumDescendants)))
	}
	return strings.Join(parts, " ")
}
