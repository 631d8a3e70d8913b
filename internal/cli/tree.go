package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taxonscope/pkg/errors"
	"github.com/matzehuels/taxonscope/pkg/render/treeviz"
	"github.com/matzehuels/taxonscope/pkg/taxon"
)

type treeOpts struct {
	rank     string
	format   string
	output   string
	detailed bool
	plain    bool
	app      appOverrides
}

// treeCommand creates the tree command for eager subtree builds.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{rank: "KINGDOM", format: treeviz.FormatText}

	cmd := &cobra.Command{
		Use:   "tree <name>",
		Short: "Build the subtree below a taxon",
		Long: `Build the subtree below a taxon.

The name is matched against the GBIF backbone at --rank, then expanded
level by level up to --max-depth, keeping at most --max-children children
per node. With --mode strict only children exactly one principal rank below
their parent are kept; permissive also shows deeper descendants as leaves;
off keeps every child.`,
		Example: `  taxonscope tree Animalia
  taxonscope tree Felidae --rank family --max-depth 3
  taxonscope tree Chordata --rank phylum --format svg -o chordata.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := treeviz.ValidateFormat(opts.format); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "--format")
			}
			rank, err := taxon.LookupRank(opts.rank)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidRank, err, "--rank")
			}
			return c.runTree(cmd.Context(), cmd.OutOrStdout(), args[0], rank, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.rank, "rank", "r", opts.rank, "rank of the root taxon")
	cmd.Flags().IntVarP(&opts.app.maxDepth, "max-depth", "d", 0, "levels to expand (default from config: 2)")
	cmd.Flags().IntVarP(&opts.app.maxChildren, "max-children", "n", 0, "children kept per node (default from config: 50)")
	cmd.Flags().IntVar(&opts.app.pageSize, "page-size", 0, "children requested per page (default from config: 100)")
	cmd.Flags().StringVarP(&opts.app.mode, "mode", "m", "", "rank filter: strict, permissive, off")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text, json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include GBIF keys in labels")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable colors in text output")
	_ = cmd.RegisterFlagCompletionFunc("rank", completeRanks)
	_ = cmd.RegisterFlagCompletionFunc("mode", completeValues("strict", "permissive", "off"))
	_ = cmd.RegisterFlagCompletionFunc("format", completeValues(treeviz.Formats...))

	return cmd
}

func (c *CLI) runTree(ctx context.Context, w io.Writer, name string, rank taxon.Rank, opts treeOpts) error {
	a, err := c.openApp(ctx, opts.app)
	if err != nil {
		return err
	}
	defer a.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building tree for %s...", name))
	spinner.Start()

	topts := a.traverser.Options()
	root, err := a.traverser.BuildTree(ctx, name, rank, topts.MaxDepth, topts.MaxChildren)
	spinner.Stop()
	if err != nil {
		return err
	}
	if !root.Found() {
		printWarning("No %s named %q", rank, name)
	}
	prog.done(fmt.Sprintf("Built tree of %d taxa", root.Size()))

	data, err := treeviz.Render(root, opts.format, treeviz.Options{
		Detailed: opts.detailed,
		Plain:    opts.plain || opts.output != "",
	})
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Wrote %s tree", opts.format)
	printFile(opts.output)
	printStats(
		stat{"%d taxa", root.Size()},
		stat{"depth %d", root.Depth()},
		stat{"%d leaves", countLeaves(root)},
	)
	return nil
}

func countLeaves(root *taxon.Node) int {
	n := 0
	root.Walk(func(node *taxon.Node, _ int) bool {
		if node.Leaf {
			n++
		}
		return true
	})
	return n
}
